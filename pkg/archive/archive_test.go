package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name    string
	content string
}

// makeZip 在内存中构造压缩包，以 / 结尾的条目为目录
func makeZip(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.content != "" {
			_, err = w.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func extract(t *testing.T, fs afero.Fs, data []byte) *Workspace {
	t.Helper()

	ws, err := Extract(fs, data, Options{TempDir: t.TempDir(), RunID: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestExtract_SingleBaseFolder(t *testing.T) {
	data := makeZip(t,
		entry{"Data/", ""},
		entry{"Data/AC001/S03A0010095.pdf", "pdf-1"},
		entry{"Data/AC002/notes.txt", "notes"},
	)

	ws := extract(t, afero.NewOsFs(), data)

	base, err := ws.DetectBase()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root, "Data"), base)

	content, err := os.ReadFile(filepath.Join(base, "AC001", "S03A0010095.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-1", string(content))
}

func TestExtract_ImplicitDirectories(t *testing.T) {
	// 没有目录条目的压缩包也要能解开
	data := makeZip(t, entry{"Data/AC001/a.pdf", "a"})

	ws := extract(t, afero.NewOsFs(), data)

	base, err := ws.DetectBase()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root, "Data"), base)
}

func TestDetectBase_MultipleTopLevelEntries(t *testing.T) {
	data := makeZip(t,
		entry{"AC001/a.pdf", "a"},
		entry{"AC002/b.pdf", "b"},
	)

	ws := extract(t, afero.NewOsFs(), data)

	base, err := ws.DetectBase()
	require.NoError(t, err)
	assert.Equal(t, ws.Root, base)
}

func TestDetectBase_SingleTopLevelFile(t *testing.T) {
	data := makeZip(t, entry{"S03A0010095.pdf", "a"})

	ws := extract(t, afero.NewOsFs(), data)

	base, err := ws.DetectBase()
	require.NoError(t, err)
	assert.Equal(t, ws.Root, base)
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("this is not an archive at all")},
		{"pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
		{"truncated zip", makeZip(t, entry{"a.txt", "hello"})[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := t.TempDir()
			_, err := Extract(afero.NewOsFs(), tt.data, Options{TempDir: parent})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraction)

			leftovers, err := os.ReadDir(parent)
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestExtract_SanitizesEntryNames(t *testing.T) {
	data := makeZip(t,
		entry{"ok.txt", "fine"},
		entry{"../evil.txt", "evil"},
		entry{"/abs/x.txt", "abs"},
		entry{"a/../../b.txt", "nested"},
		entry{"./c/./d.txt", "dots"},
	)

	parent := t.TempDir()
	ws, err := Extract(afero.NewOsFs(), data, Options{TempDir: parent})
	require.NoError(t, err)
	defer ws.Close()

	for name, want := range map[string]string{
		"ok.txt":    "fine",
		"evil.txt":  "evil",
		"abs/x.txt": "abs",
		"a/b.txt":   "nested",
		"c/d.txt":   "dots",
	} {
		got, err := os.ReadFile(filepath.Join(ws.Root, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}

	// 没有写到解压目录之外
	_, err = os.Stat(filepath.Join(parent, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(filepath.Dir(parent), "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanEntryName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a/b.pdf", "a/b.pdf"},
		{"a/", "a"},
		{"../evil.txt", "evil.txt"},
		{"/etc/passwd", "etc/passwd"},
		{"a/../../b", "a/b"},
		{"./a//b", "a/b"},
		{"..", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanEntryName(tt.name))
		})
	}
}

func TestRepackage_RoundTrip(t *testing.T) {
	data := makeZip(t,
		entry{"Data/AC001/S03A0010095.pdf", "pdf-1"},
		entry{"Data/AC001/notes.txt", "notes"},
		entry{"Data/empty/", ""},
	)

	fs := afero.NewOsFs()
	ws := extract(t, fs, data)

	// 模拟重命名
	require.NoError(t, fs.Rename(filepath.Join(ws.Root, "Data", "AC001"), filepath.Join(ws.Root, "Data", "1")))
	require.NoError(t, fs.Rename(
		filepath.Join(ws.Root, "Data", "1", "S03A0010095.pdf"),
		filepath.Join(ws.Root, "Data", "1", "S03_1_95.pdf"),
	))

	var out bytes.Buffer
	require.NoError(t, ws.Repackage(&out, flate.DefaultCompression))

	assert.Equal(t, []string{
		"Data/1/S03_1_95.pdf",
		"Data/1/notes.txt",
		"Data/empty/",
	}, entryNames(t, out.Bytes()))

	digests, err := Entries(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, xxhash.Sum64String("pdf-1"), digests["Data/1/S03_1_95.pdf"])
	assert.Equal(t, xxhash.Sum64String("notes"), digests["Data/1/notes.txt"])

	require.NoError(t, ws.Verify(out.Bytes()))

	// 再次解压得到相同的目录树
	again := extract(t, fs, out.Bytes())
	info, err := os.Stat(filepath.Join(again.Root, "Data", "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	content, err := os.ReadFile(filepath.Join(again.Root, "Data", "1", "S03_1_95.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-1", string(content))
}

func TestRepackage_UsesDeflate(t *testing.T) {
	data := makeZip(t, entry{"AC001/a.txt", string(bytes.Repeat([]byte("a"), 4096))})
	ws := extract(t, afero.NewOsFs(), data)

	var out bytes.Buffer
	require.NoError(t, ws.Repackage(&out, flate.BestCompression))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)
	assert.Less(t, zr.File[0].CompressedSize64, zr.File[0].UncompressedSize64)
}

func TestRepackage_EmptyArchive(t *testing.T) {
	ws := extract(t, afero.NewOsFs(), makeZip(t))

	var out bytes.Buffer
	require.NoError(t, ws.Repackage(&out, flate.DefaultCompression))

	digests, err := Entries(out.Bytes())
	require.NoError(t, err)
	assert.Empty(t, digests)
}

func TestVerify_DetectsMismatch(t *testing.T) {
	fs := afero.NewOsFs()
	ws := extract(t, fs, makeZip(t, entry{"AC001/a.txt", "a"}))

	var out bytes.Buffer
	require.NoError(t, ws.Repackage(&out, flate.DefaultCompression))

	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "AC001", "a.txt"), []byte("changed"), 0644))

	err := ws.Verify(out.Bytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRepackage)
	assert.Contains(t, err.Error(), "AC001/a.txt")
}

func TestWorkspace_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := makeZip(t,
		entry{"AC001/a.pdf", "a"},
		entry{"top.txt", "t"},
	)

	require.NoError(t, fs.MkdirAll("/work", 0755))
	ws, err := Extract(fs, data, Options{TempDir: "/work", RunID: "mem"})
	require.NoError(t, err)
	defer ws.Close()

	ok, err := afero.Exists(fs, filepath.Join(ws.Root, "AC001", "a.pdf"))
	require.NoError(t, err)
	assert.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, ws.Repackage(&out, flate.DefaultCompression))
	assert.Equal(t, []string{"AC001/a.pdf", "top.txt"}, entryNames(t, out.Bytes()))
}

func TestWorkspace_Close(t *testing.T) {
	ws := extract(t, afero.NewOsFs(), makeZip(t, entry{"a.txt", "a"}))

	require.NoError(t, ws.Close())
	_, err := os.Stat(ws.Root)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ws.Close())
}

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/tmp/work")

	tests := []struct {
		part    string
		want    string
		wantErr bool
	}{
		{"a/b.txt", filepath.FromSlash("/tmp/work/a/b.txt"), false},
		{"a/../b.txt", filepath.FromSlash("/tmp/work/b.txt"), false},
		{"./", root, false},
		{"../evil", "", true},
		{"a/../../evil", "", true},
		{"..", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			got, err := SafeJoin(root, filepath.FromSlash(tt.part))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
