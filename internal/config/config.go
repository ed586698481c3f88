// Package config handles tool configuration loading and management.
package config

import "time"

// Config holds all settings shared by the asset tools and server.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds game data locations.
type DataConfig struct {
	IMGPaths []string `yaml:"img_paths"` // Paths to IMG archives
	AssetDir string   `yaml:"asset_dir"` // Loose asset directory, overrides archives
	MapFiles []string `yaml:"map_files"` // Placement lists to load at startup
}

// ServerConfig holds asset server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ExportConfig holds model export settings.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"`
	SkipLOD   bool   `yaml:"skip_lod"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			IMGPaths: []string{"models/gta3.img"},
			AssetDir: "",
			MapFiles: nil,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Export: ExportConfig{
			OutputDir: "export",
			SkipLOD:   true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
