package hasher

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/pkg/logger"
)

// CalculateHash 计算文件内容的 xxHash
func CalculateHash(fs afero.Fs, filePath string) (uint64, error) {
	file, err := fs.Open(filePath)
	if err != nil {
		logger.Get().Error().Err(err).Msgf("无法打开文件: %s", filePath)
		return 0, err
	}
	defer file.Close()

	return HashReader(file)
}

// HashReader 计算数据流的 xxHash
func HashReader(r io.Reader) (uint64, error) {
	hash := xxhash.New()
	if _, err := io.Copy(hash, r); err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}

// TreeDigest 计算 root 下每个文件的哈希
// 键为相对 root 的路径（使用 / 分隔）
func TreeDigest(fs afero.Fs, root string) (map[string]uint64, error) {
	digests := make(map[string]uint64)

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		sum, err := CalculateHash(fs, path)
		if err != nil {
			return err
		}
		digests[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Trace().Msgf("目录哈希计算完成: %s (%d 个文件)", root, len(digests))
	return digests, nil
}
