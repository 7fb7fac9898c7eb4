package scanner

import (
	"os"

	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/pkg/logger"
)

type FileWalker struct {
	Fs afero.Fs
}

// Counts 目录树统计，不包含根目录本身
type Counts struct {
	Folders int
	Files   int
}

// WalkFunc 遍历回调，path 为完整路径
type WalkFunc func(path string, info os.FileInfo) error

func NewFileWalker(fs afero.Fs) *FileWalker {
	return &FileWalker{Fs: fs}
}

// Walk 遍历 root 下的所有条目，文件交给 onFile，子目录交给 onDir（可为 nil）
// root 本身不会回调，访问出错的路径会被忽略
func (w *FileWalker) Walk(root string, onFile, onDir WalkFunc) error {
	return afero.Walk(w.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Get().Debug().Err(err).Str("path", path).Msg("访问路径出错")
			return nil
		}
		if path == root {
			return nil
		}

		if info.IsDir() {
			if onDir == nil {
				return nil
			}
			return onDir(path, info)
		}

		return onFile(path, info)
	})
}

// Count 统计 root 下所有子目录和文件的数量
func (w *FileWalker) Count(root string) (Counts, error) {
	var counts Counts

	err := w.Walk(root,
		func(path string, info os.FileInfo) error {
			counts.Files++
			return nil
		},
		func(path string, info os.FileInfo) error {
			counts.Folders++
			return nil
		},
	)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("扫描目录失败: %s", root)
		return Counts{}, err
	}

	logger.Get().Info().
		Int("folders", counts.Folders).
		Int("files", counts.Files).
		Msg("目录扫描完成")
	return counts, nil
}
