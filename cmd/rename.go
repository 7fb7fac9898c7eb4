package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/moyu-x/pdf-renamer/app"
	"github.com/moyu-x/pdf-renamer/config"
	"github.com/moyu-x/pdf-renamer/pkg/report"
)

var renameCmd = &cobra.Command{
	Use:   "rename <archive.zip>",
	Short: "重命名压缩包中的目录和 PDF 文件",
	Long: `解压指定的 zip 压缩包，按规则重命名目录和 PDF 文件，然后重新打包。
带前缀的目录（默认 AC）改为目录名中的第一段数字，如 AC001 -> 1；
只在改过名的目录中，把 S03A0010095.pdf 这类文件改为 S03_1_95.pdf。
目标目录已存在时跳过该目录。`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	prefix, _ := cmd.Flags().GetString("prefix")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noVerify, _ := cmd.Flags().GetBool("no-verify")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if prefix == "" {
		prefix = cfg.Renamer.FolderPrefix
	}

	output, err = resolveOutput(output, cfg.Output.FileName)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	file := cfg.Logging.File
	if logFile != "" {
		file = logFile
	}

	opts := &app.RenameOptions{
		ProcessOptions: app.ProcessOptions{
			Prefix:           prefix,
			TempDir:          cfg.Archive.TempDir,
			CompressionLevel: cfg.Archive.CompressionLevel,
			Verify:           cfg.Archive.Verify && !noVerify,
		},
		InputPath:  args[0],
		OutputPath: output,
		DryRun:     dryRun,
		Verbose:    verbose,
		LogLevel:   level,
		LogFile:    file,
	}

	result, err := app.RunRename(opts)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Render(result))
	if !dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "结果已写入: %s\n", output)
	}

	return nil
}

// resolveOutput 未指定时使用默认文件名；指定的是已存在的目录时在其中使用默认文件名
func resolveOutput(output, defaultName string) (string, error) {
	if output == "" {
		return defaultName, nil
	}

	info, err := os.Stat(output)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(output, defaultName), nil
	case err == nil || os.IsNotExist(err):
		return output, nil
	default:
		return "", fmt.Errorf("检查输出路径失败: %w", err)
	}
}

func init() {
	renameCmd.Flags().StringP("output", "o", "", "输出文件或目录（默认: renamed_folders_and_files.zip）")
	renameCmd.Flags().String("prefix", "", "目录前缀，覆盖配置文件（默认: AC）")
	renameCmd.Flags().Bool("dry-run", false, "预览模式，只输出报告，不写出结果文件")
	renameCmd.Flags().Bool("no-verify", false, "跳过输出压缩包校验")
	renameCmd.Flags().BoolP("verbose", "v", false, "显示详细日志")

	rootCmd.AddCommand(renameCmd)
}
