package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdf-renamer",
	Short: "批量重命名压缩包中的目录和 PDF 文件",
	Long: `PDF Renamer 是一个命令行工具，用于整理压缩包内的目录和 PDF 文件名。

主要功能:
- 解压 zip 压缩包（自动识别唯一的外层目录）
- 把 AC001、AC002 这类目录重命名为 1、2
- 在改名后的目录中把 S03A0010095.pdf 重命名为 S03_1_95.pdf
- 重新打包为新的 zip 压缩包并校验内容`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认: $HOME/.pdf-renamer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别，覆盖配置文件")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志文件路径，覆盖配置文件")
}
