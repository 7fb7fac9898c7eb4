package internal

import "time"

// 重命名对象类型
type ActionKind string

const (
	KindFolder ActionKind = "folder"
	KindFile   ActionKind = "file"
)

// 重命名结果状态
type ActionStatus string

const (
	StatusApplied          ActionStatus = "applied"
	StatusSkippedCollision ActionStatus = "skipped_collision"
	StatusSkippedNoMatch   ActionStatus = "skipped_no_match"
	StatusFailed           ActionStatus = "failed"
)

// RenameAction 一条重命名记录，仅用于展示
type RenameAction struct {
	Kind         ActionKind
	OriginalName string
	NewName      string // 未匹配时为空
	OriginalPath string // 相对于处理根目录，使用 / 分隔
	NewPath      string
	Status       ActionStatus
	Reason       string // 失败或跳过的原因
}

// Renamed 是否已实际重命名
func (a RenameAction) Renamed() bool {
	return a.Status == StatusApplied
}

// 处理报告
type Report struct {
	RunID          string
	BaseFolder     string // 压缩包内唯一的外层目录，没有时为空
	FoldersScanned int
	FilesScanned   int
	FoldersRenamed int
	FilesRenamed   int
	FolderActions  []RenameAction
	FileActions    []RenameAction
	InputSize      int64
	OutputSize     int64
	Verified       bool
	DryRun         bool
	StartTime      time.Time
	EndTime        time.Time
}

// CountStatus 统计某种状态的记录数
func CountStatus(actions []RenameAction, status ActionStatus) int {
	n := 0
	for _, a := range actions {
		if a.Status == status {
			n++
		}
	}
	return n
}
