package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/moyu-x/pdf-renamer/internal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	appliedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Faint(true)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
)

// Render 把处理报告渲染为终端文本
func Render(r *internal.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PDF 目录与文件重命名"))
	b.WriteString("\n")

	if r.BaseFolder != "" {
		b.WriteString(fmt.Sprintf("找到唯一的外层目录: %s\n", r.BaseFolder))
	} else {
		b.WriteString("压缩包根目录下有多个条目\n")
	}

	b.WriteString(sectionStyle.Render("目录重命名"))
	b.WriteString("\n")
	writeActions(&b, r.FolderActions)

	b.WriteString(sectionStyle.Render("PDF 文件重命名"))
	b.WriteString("\n")
	if r.FoldersRenamed == 0 {
		b.WriteString(skipStyle.Render("  没有目录被重命名，无需处理 PDF 文件"))
		b.WriteString("\n")
	} else {
		writeActions(&b, r.FileActions)
	}

	b.WriteString("\n")
	b.WriteString(statsBoxStyle.Render(summary(r)))
	b.WriteString("\n")

	return b.String()
}

func writeActions(b *strings.Builder, actions []internal.RenameAction) {
	if len(actions) == 0 {
		b.WriteString(skipStyle.Render("  (无)"))
		b.WriteString("\n")
		return
	}
	for _, a := range actions {
		b.WriteString("  ")
		b.WriteString(Line(a))
		b.WriteString("\n")
	}
}

// Line 单条记录的展示文本
func Line(a internal.RenameAction) string {
	if a.Renamed() {
		return appliedStyle.Render(fmt.Sprintf("✔ %s → %s", a.OriginalPath, a.NewName))
	}

	switch a.Status {
	case internal.StatusSkippedCollision:
		return warnStyle.Render(fmt.Sprintf("⚠ 跳过 %s: %s", a.OriginalPath, a.Reason))
	case internal.StatusFailed:
		return warnStyle.Render(fmt.Sprintf("⚠ 无法重命名 %s: %s", a.OriginalPath, a.Reason))
	default:
		return skipStyle.Render(fmt.Sprintf("- 跳过 %s (%s)", a.OriginalPath, a.Reason))
	}
}

func summary(r *internal.Report) string {
	rows := [][2]string{
		{"扫描目录数", humanize.Comma(int64(r.FoldersScanned))},
		{"扫描文件数", humanize.Comma(int64(r.FilesScanned))},
		{"已重命名目录", humanize.Comma(int64(r.FoldersRenamed))},
		{"已重命名文件", humanize.Comma(int64(r.FilesRenamed))},
		{"目录冲突", humanize.Comma(int64(internal.CountStatus(r.FolderActions, internal.StatusSkippedCollision)))},
		{"失败", humanize.Comma(int64(
			internal.CountStatus(r.FolderActions, internal.StatusFailed) +
				internal.CountStatus(r.FileActions, internal.StatusFailed)))},
		{"输入大小", humanize.Bytes(uint64(r.InputSize))},
	}
	if r.DryRun {
		rows = append(rows, [2]string{"输出", "预览模式，未写出"})
	} else {
		rows = append(rows, [2]string{"输出大小", humanize.Bytes(uint64(r.OutputSize))})
	}
	if r.Verified {
		rows = append(rows, [2]string{"校验", "通过"})
	}
	if !r.EndTime.IsZero() {
		rows = append(rows, [2]string{"耗时", r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row[0]+": ")+row[1])
	}
	return strings.Join(lines, "\n")
}
