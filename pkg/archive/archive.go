package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/internal"
	"github.com/moyu-x/pdf-renamer/pkg/logger"
)

// MIMEType 输出压缩包的 MIME 类型
const MIMEType = "application/zip"

var (
	// ErrExtraction 输入不是有效的压缩包或无法读取，整个流程终止
	ErrExtraction = errors.New("解压失败")
	// ErrRepackage 写出压缩包失败，不会产生输出文件
	ErrRepackage = errors.New("重新打包失败")
)

// 基于 zip 容器的格式都交给 zip 解析
var zipFamily = map[string]bool{
	"zip":  true,
	"docx": true,
	"xlsx": true,
	"pptx": true,
	"epub": true,
	"jar":  true,
	"apk":  true,
}

// Options 解压选项
type Options struct {
	TempDir string // 临时目录的父目录，为空时使用系统临时目录
	RunID   string // 用于临时目录命名
}

// Workspace 一次运行的解压目录，用完必须 Close
type Workspace struct {
	Fs     afero.Fs
	Root   string // 解压根目录
	closed bool
}

// Extract 把压缩包解压到新建的临时目录
// 失败时临时目录已被清理
func Extract(fs afero.Fs, data []byte, opts Options) (*Workspace, error) {
	if err := checkFormat(data); err != nil {
		return nil, err
	}

	// 不安全的条目名在 extractEntry 中规范化
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	root, err := afero.TempDir(fs, opts.TempDir, internal.TempDirPrefix+opts.RunID+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: 创建临时目录失败: %v", ErrExtraction, err)
	}

	for _, f := range zr.File {
		if err := extractEntry(fs, root, f); err != nil {
			if rmErr := fs.RemoveAll(root); rmErr != nil {
				logger.Get().Warn().Err(rmErr).Str("path", root).Msg("清理临时目录失败")
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, f.Name, err)
		}
	}

	logger.Get().Info().
		Int("entries", len(zr.File)).
		Str("path", root).
		Msg("压缩包已解压")

	return &Workspace{Fs: fs, Root: root}, nil
}

// checkFormat 用文件头判断输入类型，能识别但不是 zip 的直接拒绝
func checkFormat(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: 输入为空", ErrExtraction)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil
	}
	if zipFamily[kind.Extension] {
		return nil
	}
	return fmt.Errorf("%w: 不支持的文件类型 %s (%s)", ErrExtraction, kind.Extension, kind.MIME.Value)
}

func extractEntry(fs afero.Fs, root string, f *zip.File) error {
	name := CleanEntryName(f.Name)
	if name == "" {
		return nil
	}
	if name != strings.TrimSuffix(f.Name, "/") {
		logger.Get().Warn().Str("entry", f.Name).Str("path", name).Msg("条目名已规范化")
	}

	target, err := SafeJoin(root, filepath.FromSlash(name))
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return fs.MkdirAll(target, 0755)
	}

	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	// 保证后续可以读取和改名
	perm := f.Mode().Perm() | 0600
	dst, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// DetectBase 返回实际处理的根目录
// 解压后顶层只有一个目录时使用该目录，否则使用解压根目录
func (w *Workspace) DetectBase() (string, error) {
	entries, err := afero.ReadDir(w.Fs, w.Root)
	if err != nil {
		return "", fmt.Errorf("读取解压目录失败: %w", err)
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(w.Root, entries[0].Name()), nil
	}
	return w.Root, nil
}

// Close 删除临时目录，可重复调用
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.Fs.RemoveAll(w.Root); err != nil {
		return fmt.Errorf("删除临时目录失败: %w", err)
	}
	logger.Get().Debug().Str("path", w.Root).Msg("临时目录已删除")
	return nil
}
