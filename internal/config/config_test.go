package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test data defaults
	if len(cfg.Data.IMGPaths) != 1 || cfg.Data.IMGPaths[0] != "models/gta3.img" {
		t.Errorf("expected default archive models/gta3.img, got %v", cfg.Data.IMGPaths)
	}
	if cfg.Data.AssetDir != "" {
		t.Errorf("expected empty asset dir, got %s", cfg.Data.AssetDir)
	}

	// Test server defaults
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("expected addr 127.0.0.1:8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}

	// Test export defaults
	if cfg.Export.OutputDir != "export" {
		t.Errorf("expected output dir 'export', got %s", cfg.Export.OutputDir)
	}
	if !cfg.Export.SkipLOD {
		t.Error("expected skip_lod to be true by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
data:
  img_paths:
    - "models/gta3.img"
    - "models/gta_int.img"
  asset_dir: "/opt/vice-city"
  map_files:
    - "data/maps/downtown/downtown.ipl"

server:
  addr: "0.0.0.0:9090"
  shutdown_timeout: 5s

export:
  output_dir: "out"
  skip_lod: false

logging:
  level: "debug"
  log_file: "assets.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if len(cfg.Data.IMGPaths) != 2 {
		t.Errorf("expected 2 archives, got %v", cfg.Data.IMGPaths)
	}
	if cfg.Data.AssetDir != "/opt/vice-city" {
		t.Errorf("expected asset dir /opt/vice-city, got %s", cfg.Data.AssetDir)
	}
	if len(cfg.Data.MapFiles) != 1 || cfg.Data.MapFiles[0] != "data/maps/downtown/downtown.ipl" {
		t.Errorf("expected one map file, got %v", cfg.Data.MapFiles)
	}

	if cfg.Server.Addr != "0.0.0.0:9090" {
		t.Errorf("expected addr 0.0.0.0:9090, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected shutdown timeout 5s, got %v", cfg.Server.ShutdownTimeout)
	}

	if cfg.Export.OutputDir != "out" {
		t.Errorf("expected output dir 'out', got %s", cfg.Export.OutputDir)
	}
	if cfg.Export.SkipLOD {
		t.Error("expected skip_lod to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "assets.log" {
		t.Errorf("expected log file 'assets.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
server:
  addr: [not a string
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create config.yaml in current directory
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  addr: \"127.0.0.1:8000\"\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config) error
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) error {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				return nil
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "listen flag",
			setup: func() {
				*flagListen = "0.0.0.0:7000"
			},
			verify: func(cfg *Config) error {
				if cfg.Server.Addr != "0.0.0.0:7000" {
					t.Errorf("expected addr 0.0.0.0:7000, got %s", cfg.Server.Addr)
				}
				return nil
			},
			teardown: func() {
				*flagListen = ""
			},
		},
		{
			name: "data flag",
			setup: func() {
				*flagData = "/games/vice-city"
			},
			verify: func(cfg *Config) error {
				if cfg.Data.AssetDir != "/games/vice-city" {
					t.Errorf("expected asset dir /games/vice-city, got %s", cfg.Data.AssetDir)
				}
				return nil
			},
			teardown: func() {
				*flagData = ""
			},
		},
		{
			name: "img flag",
			setup: func() {
				*flagImg = "custom.img"
			},
			verify: func(cfg *Config) error {
				if len(cfg.Data.IMGPaths) != 1 || cfg.Data.IMGPaths[0] != "custom.img" {
					t.Errorf("expected archives [custom.img], got %v", cfg.Data.IMGPaths)
				}
				return nil
			},
			teardown: func() {
				*flagImg = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  addr: "10.0.0.1:8080"
logging:
  level: "warn"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagListen = "0.0.0.0:9999"
	defer func() {
		*flagConfig = ""
		*flagListen = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Addr should be from flag, not file
	if cfg.Server.Addr != "0.0.0.0:9999" {
		t.Errorf("expected addr 0.0.0.0:9999 from flag, got %s", cfg.Server.Addr)
	}

	// Level should be from file since no flag override
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level 'warn' from file, got %s", cfg.Logging.Level)
	}
}
