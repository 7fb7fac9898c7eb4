package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/viper"

	"github.com/moyu-x/pdf-renamer/internal"
)

type Config struct {
	Renamer struct {
		FolderPrefix string `mapstructure:"folder_prefix"`
	} `mapstructure:"renamer"`
	Archive struct {
		TempDir          string `mapstructure:"temp_dir"`
		CompressionLevel int    `mapstructure:"compression_level"`
		Verify           bool   `mapstructure:"verify"`
	} `mapstructure:"archive"`
	Output struct {
		FileName string `mapstructure:"file_name"`
	} `mapstructure:"output"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
}

// Load 读取配置文件，path 为空时按默认路径查找
// 配置文件不存在时使用默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pdf-renamer")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pdf-renamer")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("renamer.folder_prefix", internal.DefaultFolderPrefix)
	v.SetDefault("archive.temp_dir", "")
	v.SetDefault("archive.compression_level", flate.DefaultCompression)
	v.SetDefault("archive.verify", true)
	v.SetDefault("output.file_name", internal.DefaultOutputFileName)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Renamer.FolderPrefix) == "" {
		return errors.New("renamer.folder_prefix 不能为空")
	}
	if c.Archive.CompressionLevel < flate.HuffmanOnly || c.Archive.CompressionLevel > flate.BestCompression {
		return fmt.Errorf("archive.compression_level 超出范围 [%d, %d]: %d",
			flate.HuffmanOnly, flate.BestCompression, c.Archive.CompressionLevel)
	}
	if strings.TrimSpace(c.Output.FileName) == "" {
		return errors.New("output.file_name 不能为空")
	}
	return nil
}
