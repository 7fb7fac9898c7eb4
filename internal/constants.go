package internal

const (
	// 默认目录前缀
	DefaultFolderPrefix = "AC"

	// 默认输出文件名
	DefaultOutputFileName = "renamed_folders_and_files.zip"

	// 临时目录前缀
	TempDirPrefix = "pdf-renamer-"
)
