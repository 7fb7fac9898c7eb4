package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/pkg/hasher"
	"github.com/moyu-x/pdf-renamer/pkg/logger"
)

// Repackage 把解压根目录（包括外层目录）重新打包写入 out
// 条目名相对于解压根目录；空目录写入目录条目，其余只写文件
func (w *Workspace) Repackage(out io.Writer, level int) error {
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(dst io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(dst, level)
	})

	files := 0
	err := afero.Walk(w.Fs, w.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == w.Root {
			return nil
		}

		rel, err := filepath.Rel(w.Root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if info.IsDir() {
			return w.writeDirEntry(zw, path, name, info)
		}

		if err := w.writeFileEntry(zw, path, name, info); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRepackage, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRepackage, err)
	}

	logger.Get().Info().Int("files", files).Msg("压缩包已生成")
	return nil
}

func (w *Workspace) writeDirEntry(zw *zip.Writer, path, name string, info os.FileInfo) error {
	empty, err := afero.IsEmpty(w.Fs, path)
	if err != nil || !empty {
		return err
	}

	hdr := &zip.FileHeader{
		Name:     name + "/",
		Method:   zip.Store,
		Modified: info.ModTime(),
	}
	hdr.SetMode(info.Mode())
	_, err = zw.CreateHeader(hdr)
	return err
}

func (w *Workspace) writeFileEntry(zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	src, err := w.Fs.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Entries 读取压缩包，返回每个文件条目的 xxHash，键为条目名
func Entries(data []byte) (map[string]uint64, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	digests := make(map[string]uint64, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		sum, err := hasher.HashReader(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		digests[f.Name] = sum
	}
	return digests, nil
}

// Verify 确认 data 解开后与当前解压目录中的文件完全一致
func (w *Workspace) Verify(data []byte) error {
	want, err := hasher.TreeDigest(w.Fs, w.Root)
	if err != nil {
		return fmt.Errorf("%w: 计算目录哈希失败: %v", ErrRepackage, err)
	}

	got, err := Entries(data)
	if err != nil {
		return fmt.Errorf("%w: 读取输出压缩包失败: %v", ErrRepackage, err)
	}

	if diff := diffDigests(want, got); len(diff) > 0 {
		return fmt.Errorf("%w: 输出与工作目录不一致: %v", ErrRepackage, diff)
	}

	logger.Get().Debug().Int("files", len(want)).Msg("输出压缩包校验通过")
	return nil
}

// diffDigests 返回不一致的路径，已排序
func diffDigests(want, got map[string]uint64) []string {
	var diff []string
	for name, sum := range want {
		if other, ok := got[name]; !ok || other != sum {
			diff = append(diff, name)
		}
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}
