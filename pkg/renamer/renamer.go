package renamer

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/internal"
	"github.com/moyu-x/pdf-renamer/pkg/logger"
)

// Renamer 在目录树上执行两轮重命名：
// 第一轮把带前缀的目录改为纯数字，第二轮只处理第一轮改过名的目录中的 PDF 文件
type Renamer struct {
	Fs     afero.Fs // 文件系统接口，便于测试和抽象
	Prefix string   // 目录前缀，不区分大小写
	log    zerolog.Logger
}

// Result 一次运行的结果
type Result struct {
	Folders   []internal.RenameAction
	Files     []internal.RenameAction
	RenameMap *RenameMap
}

func (r *Result) FoldersRenamed() int {
	return internal.CountStatus(r.Folders, internal.StatusApplied)
}

func (r *Result) FilesRenamed() int {
	return internal.CountStatus(r.Files, internal.StatusApplied)
}

func New(fs afero.Fs, prefix string) *Renamer {
	return &Renamer{
		Fs:     fs,
		Prefix: prefix,
		log:    *logger.Get(),
	}
}

// WithLogger 替换使用的 logger
func (r *Renamer) WithLogger(l zerolog.Logger) *Renamer {
	r.log = l
	return r
}

// Run 依次执行目录重命名和文件重命名
// 单个条目的失败只记录，不会中断处理；只有根目录不可读时返回错误
func (r *Renamer) Run(root string) (*Result, error) {
	folders, moves, err := r.RenameFolders(root)
	if err != nil {
		return nil, err
	}

	files := r.RenameFiles(root, moves)

	return &Result{
		Folders:   folders,
		Files:     files,
		RenameMap: moves,
	}, nil
}

// RenameFolders 遍历整棵树，父目录先于子目录处理
// 已改名的目录不会再被遍历
func (r *Renamer) RenameFolders(root string) ([]internal.RenameAction, *RenameMap, error) {
	info, err := r.Fs.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("读取根目录失败: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("根路径不是目录: %s", root)
	}

	moves := NewRenameMap()
	var actions []internal.RenameAction
	r.walkFolders(root, root, moves, &actions)

	r.log.Info().
		Int("renamed", internal.CountStatus(actions, internal.StatusApplied)).
		Int("collisions", internal.CountStatus(actions, internal.StatusSkippedCollision)).
		Int("failed", internal.CountStatus(actions, internal.StatusFailed)).
		Msg("目录重命名完成")

	return actions, moves, nil
}

func (r *Renamer) walkFolders(root, dir string, moves *RenameMap, actions *[]internal.RenameAction) {
	// 先取子项快照，改名不会影响本层的遍历
	entries, err := afero.ReadDir(r.Fs, dir)
	if err != nil {
		r.log.Warn().Err(err).Str("path", relPath(root, dir)).Msg("读取目录失败，跳过")
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		action, newPath := r.renameFolder(root, dir, entry.Name())
		if action != nil {
			*actions = append(*actions, *action)
		}

		if newPath != "" {
			moves.Add(path, newPath)
			continue
		}

		r.walkFolders(root, path, moves, actions)
	}
}

// renameFolder 处理单个目录
// 不带前缀时返回 nil；改名成功时返回新路径
func (r *Renamer) renameFolder(root, parent, name string) (*internal.RenameAction, string) {
	if !HasPrefix(name, r.Prefix) {
		return nil, ""
	}

	oldPath := filepath.Join(parent, name)
	action := &internal.RenameAction{
		Kind:         internal.KindFolder,
		OriginalName: name,
		OriginalPath: relPath(root, oldPath),
	}

	newName, ok := FolderTarget(name, r.Prefix)
	if !ok {
		action.Status = internal.StatusSkippedNoMatch
		action.Reason = "目录名中没有数字"
		r.log.Debug().Str("folder", action.OriginalPath).Msg("目录名中没有数字，跳过")
		return action, ""
	}

	newPath := filepath.Join(parent, newName)
	action.NewName = newName
	action.NewPath = relPath(root, newPath)

	exists, err := afero.Exists(r.Fs, newPath)
	if err != nil {
		action.Status = internal.StatusFailed
		action.Reason = err.Error()
		r.log.Warn().Err(err).Str("folder", action.OriginalPath).Msg("检查目标目录失败")
		return action, ""
	}
	if exists {
		action.Status = internal.StatusSkippedCollision
		action.Reason = fmt.Sprintf("%s 已存在", newName)
		r.log.Warn().
			Str("folder", action.OriginalPath).
			Str("target", newName).
			Msg("目标名称已存在，跳过目录重命名")
		return action, ""
	}

	if err := r.Fs.Rename(oldPath, newPath); err != nil {
		action.Status = internal.StatusFailed
		action.Reason = err.Error()
		r.log.Warn().Err(err).Str("folder", action.OriginalPath).Msg("目录重命名失败")
		return action, ""
	}

	action.Status = internal.StatusApplied
	r.log.Info().
		Str("from", name).
		Str("to", newName).
		Str("path", action.OriginalPath).
		Msg("目录已重命名")
	return action, newPath
}

// RenameFiles 只扫描 moves 中的目标目录（不递归）
// 不做冲突检查：目标文件已存在时会被覆盖
func (r *Renamer) RenameFiles(root string, moves *RenameMap) []internal.RenameAction {
	if moves == nil || moves.Len() == 0 {
		r.log.Info().Msg("没有目录被重命名，无需处理 PDF 文件")
		return nil
	}

	var actions []internal.RenameAction
	for _, dir := range moves.Targets() {
		r.log.Info().Str("folder", relPath(root, dir)).Msg("扫描已重命名目录")

		entries, err := afero.ReadDir(r.Fs, dir)
		if err != nil {
			r.log.Warn().Err(err).Str("folder", relPath(root, dir)).Msg("读取目录失败，跳过")
			continue
		}

		for _, entry := range entries {
			if !IsPDF(entry.Name()) {
				continue
			}
			actions = append(actions, r.renameFile(root, dir, entry.Name()))
		}
	}

	r.log.Info().
		Int("renamed", internal.CountStatus(actions, internal.StatusApplied)).
		Int("failed", internal.CountStatus(actions, internal.StatusFailed)).
		Msg("文件重命名完成")

	return actions
}

func (r *Renamer) renameFile(root, dir, name string) internal.RenameAction {
	oldPath := filepath.Join(dir, name)
	action := internal.RenameAction{
		Kind:         internal.KindFile,
		OriginalName: name,
		OriginalPath: relPath(root, oldPath),
	}

	newName, ok := FileTarget(name)
	if !ok {
		action.Status = internal.StatusSkippedNoMatch
		action.Reason = "文件名不符合 S##A#######.pdf 格式"
		r.log.Info().Str("file", action.OriginalPath).Msg("文件名不匹配，跳过")
		return action
	}

	newPath := filepath.Join(dir, newName)
	action.NewName = newName
	action.NewPath = relPath(root, newPath)

	// TODO: 确认同名覆盖是否符合预期，目前只记录警告
	exists, err := afero.Exists(r.Fs, newPath)
	if err != nil {
		r.log.Debug().Err(err).Str("file", action.OriginalPath).Msg("检查目标文件失败")
	}
	if exists {
		r.log.Warn().
			Str("file", action.OriginalPath).
			Str("target", newName).
			Msg("目标文件已存在，将被覆盖")
	}

	if err := r.Fs.Rename(oldPath, newPath); err != nil {
		action.Status = internal.StatusFailed
		action.Reason = err.Error()
		r.log.Warn().Err(err).Str("file", action.OriginalPath).Msg("文件重命名失败")
		return action
	}

	action.Status = internal.StatusApplied
	r.log.Info().
		Str("from", name).
		Str("to", newName).
		Str("folder", relPath(root, dir)).
		Msg("文件已重命名")
	return action
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
