package app

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/moyu-x/pdf-renamer/internal"
	"github.com/moyu-x/pdf-renamer/pkg/archive"
	"github.com/moyu-x/pdf-renamer/pkg/logger"
	"github.com/moyu-x/pdf-renamer/pkg/renamer"
	"github.com/moyu-x/pdf-renamer/pkg/scanner"
)

// ProcessOptions 一次处理所需的参数
type ProcessOptions struct {
	Prefix           string
	TempDir          string
	CompressionLevel int
	Verify           bool
}

// RenameOptions 命令行运行参数
type RenameOptions struct {
	ProcessOptions
	InputPath  string
	OutputPath string
	DryRun     bool
	Verbose    bool
	LogLevel   string
	LogFile    string
}

// Process 解压 data，重命名后重新打包
// 返回新的压缩包和处理报告；只有解压和打包失败会返回错误
func Process(fs afero.Fs, data []byte, opts ProcessOptions) ([]byte, *internal.Report, error) {
	runID := uuid.New().String()
	log := logger.ForRun(runID)

	report := &internal.Report{
		RunID:     runID,
		InputSize: int64(len(data)),
		StartTime: time.Now(),
	}

	ws, err := archive.Extract(fs, data, archive.Options{TempDir: opts.TempDir, RunID: runID[:8]})
	if err != nil {
		log.Error().Err(err).Msg("解压压缩包失败")
		return nil, nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn().Err(err).Msg("清理临时目录失败")
		}
	}()

	base, err := ws.DetectBase()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", archive.ErrExtraction, err)
	}
	if base != ws.Root {
		report.BaseFolder = filepath.Base(base)
		log.Info().Str("folder", report.BaseFolder).Msg("找到唯一的外层目录")
	} else {
		log.Info().Msg("压缩包根目录下有多个条目")
	}

	counts, err := scanner.NewFileWalker(fs).Count(base)
	if err != nil {
		return nil, nil, fmt.Errorf("扫描解压目录失败: %w", err)
	}
	report.FoldersScanned = counts.Folders
	report.FilesScanned = counts.Files

	result, err := renamer.New(fs, opts.Prefix).WithLogger(log).Run(base)
	if err != nil {
		return nil, nil, fmt.Errorf("重命名失败: %w", err)
	}
	report.FolderActions = result.Folders
	report.FileActions = result.Files
	report.FoldersRenamed = result.FoldersRenamed()
	report.FilesRenamed = result.FilesRenamed()

	var buf bytes.Buffer
	if err := ws.Repackage(&buf, opts.CompressionLevel); err != nil {
		log.Error().Err(err).Msg("重新打包失败")
		return nil, nil, err
	}

	if opts.Verify {
		if err := ws.Verify(buf.Bytes()); err != nil {
			log.Error().Err(err).Msg("输出压缩包校验失败")
			return nil, nil, err
		}
		report.Verified = true
	}

	report.OutputSize = int64(buf.Len())
	report.EndTime = time.Now()

	log.Info().
		Int("folders_renamed", report.FoldersRenamed).
		Int("files_renamed", report.FilesRenamed).
		Dur("duration", report.EndTime.Sub(report.StartTime)).
		Msg("处理完成")

	return buf.Bytes(), report, nil
}

// RunRename 读取输入文件，处理后写出结果
// 输出先写入临时文件再改名，失败时不会留下不完整的结果
func RunRename(opts *RenameOptions) (*internal.Report, error) {
	logLevel := opts.LogLevel
	if opts.Verbose {
		logLevel = "debug"
	}

	if err := logger.Init(logLevel, opts.LogFile); err != nil {
		return nil, err
	}
	defer logger.Close()

	if !opts.DryRun && opts.OutputPath == "" {
		return nil, errors.New("必须指定输出文件")
	}

	logger.Get().Info().Msgf("输入文件: %s", opts.InputPath)
	logger.Get().Info().Msgf("目录前缀: %s", opts.Prefix)
	if opts.DryRun {
		logger.Get().Info().Msg("=== 预览模式，不会写出结果文件 ===")
	}

	fs := afero.NewOsFs()

	data, err := afero.ReadFile(fs, opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取输入文件失败: %v", archive.ErrExtraction, err)
	}

	out, report, err := Process(fs, data, opts.ProcessOptions)
	if err != nil {
		return nil, err
	}
	report.DryRun = opts.DryRun

	if opts.DryRun {
		return report, nil
	}

	if err := writeOutput(fs, opts.OutputPath, out, report.RunID); err != nil {
		return nil, fmt.Errorf("%w: %v", archive.ErrRepackage, err)
	}
	logger.Get().Info().Msgf("结果已写入: %s", opts.OutputPath)

	return report, nil
}

func writeOutput(fs afero.Fs, path string, data []byte, runID string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp-" + runID
	if err := afero.WriteFile(fs, tmp, data, 0644); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
