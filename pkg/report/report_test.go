package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moyu-x/pdf-renamer/internal"
)

func TestRender(t *testing.T) {
	start := time.Now()
	r := &internal.Report{
		BaseFolder:     "Upload",
		FoldersScanned: 1200,
		FilesScanned:   3,
		FoldersRenamed: 1,
		FilesRenamed:   1,
		FolderActions: []internal.RenameAction{
			{Kind: internal.KindFolder, OriginalName: "AC001", NewName: "1", OriginalPath: "AC001", Status: internal.StatusApplied},
			{Kind: internal.KindFolder, OriginalName: "AC1", NewName: "1", OriginalPath: "AC1", Status: internal.StatusSkippedCollision, Reason: "1 已存在"},
		},
		FileActions: []internal.RenameAction{
			{Kind: internal.KindFile, OriginalName: "S03A0010095.pdf", NewName: "S03_1_95.pdf", OriginalPath: "1/S03A0010095.pdf", Status: internal.StatusApplied},
			{Kind: internal.KindFile, OriginalName: "bad.pdf", OriginalPath: "1/bad.pdf", Status: internal.StatusSkippedNoMatch, Reason: "不匹配"},
		},
		InputSize:  2048,
		OutputSize: 1024,
		Verified:   true,
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Millisecond),
	}

	out := Render(r)

	assert.Contains(t, out, "Upload")
	assert.Contains(t, out, "AC001 → 1")
	assert.Contains(t, out, "1 已存在")
	assert.Contains(t, out, "1/S03A0010095.pdf → S03_1_95.pdf")
	assert.Contains(t, out, "1/bad.pdf")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "1.5s")
}

func TestRender_NothingRenamed(t *testing.T) {
	out := Render(&internal.Report{DryRun: true})

	assert.Contains(t, out, "压缩包根目录下有多个条目")
	assert.Contains(t, out, "没有目录被重命名")
	assert.Contains(t, out, "预览模式")
}

func TestLine(t *testing.T) {
	failed := Line(internal.RenameAction{OriginalPath: "AC9", Status: internal.StatusFailed, Reason: "permission denied"})
	assert.Contains(t, failed, "无法重命名 AC9")
	assert.Contains(t, failed, "permission denied")
}

func TestLine_Renamed(t *testing.T) {
	a := internal.RenameAction{OriginalPath: "AC001", NewName: "1", Status: internal.StatusApplied}
	assert.True(t, a.Renamed())
	assert.Contains(t, Line(a), "✔ AC001 → 1")

	a.Status = internal.StatusSkippedCollision
	a.Reason = "1 已存在"
	assert.False(t, a.Renamed())
	assert.Contains(t, Line(a), "跳过 AC001: 1 已存在")
}
