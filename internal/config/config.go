package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type StorageConfig struct {
	// DataDir holds uploaded documents under <data_dir>/documents.
	DataDir string `mapstructure:"data_dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// If path is empty it looks for config.yaml in the working directory.
// Environment variables prefixed with YUKI_ override file values,
// e.g. YUKI_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/yuki.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("storage.data_dir", "data")

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("YUKI")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env carry the day.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// DocumentsDir is where uploaded files are stored on disk.
func (c *Config) DocumentsDir() string {
	return filepath.Join(c.Storage.DataDir, "documents")
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
