package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin 拼接 root 和 parts，并确认结果仍在 root 内
func SafeJoin(root string, parts ...string) (string, error) {
	p := filepath.Join(append([]string{root}, parts...)...)
	cleanRoot := filepath.Clean(root)
	cleanP := filepath.Clean(p)

	rel, err := filepath.Rel(cleanRoot, cleanP)
	if err != nil {
		return "", err
	}
	relSl := filepath.ToSlash(rel)
	if relSl == ".." || strings.HasPrefix(relSl, "../") {
		return "", fmt.Errorf("路径超出解压目录: %s", strings.Join(parts, "/"))
	}
	return cleanP, nil
}

// CleanEntryName 去掉压缩包条目名中的空段、"." 和 ".."
// 绝对路径和向上跳出的条目因此会落在解压目录内，结果为空表示该条目不需要解压
func CleanEntryName(name string) string {
	parts := strings.Split(filepath.ToSlash(name), "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}
