package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration, loaded from config.toml next
// to the executable. Heuristic keyword lists and thresholds live here so they
// can be tuned without touching the matching code.
type AppConfig struct {
	Server   ServerConfig        `toml:"server"`
	Data     DataConfig          `toml:"data"`
	Analysis AnalysisConfig      `toml:"analysis"`
	Taxonomy map[string][]string `toml:"taxonomy"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	MaxUploadMB int  `toml:"max_upload_mb"`
}

// DataConfig holds on-disk data locations.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// AnalysisConfig holds the tunable thresholds of the classification and
// analysis heuristics.
type AnalysisConfig struct {
	// MinDataRows/MinDataColumns: minimum shape for a sheet to look data-like.
	MinDataRows    int `toml:"min_data_rows"`
	MinDataColumns int `toml:"min_data_columns"`
	// MaxDictColumns: a dictionary sheet has at most this many columns.
	MaxDictColumns int `toml:"max_dict_columns"`

	// SmallCardinalityMax caps distinct values for a categorical column;
	// SmallCardinalityRatio is the same bound relative to row count.
	SmallCardinalityMax   int     `toml:"small_cardinality_max"`
	SmallCardinalityRatio float64 `toml:"small_cardinality_ratio"`

	// NumericCoerceRatio: share of parseable values needed to treat a mixed
	// column as numeric during table cleaning.
	NumericCoerceRatio float64 `toml:"numeric_coerce_ratio"`

	HighMissingPercent float64 `toml:"high_missing_percent"`
	CorrelationMaxCols int     `toml:"correlation_max_cols"`
	TopCorrelations    int     `toml:"top_correlations"`
	PreviewRows        int     `toml:"preview_rows"`
	MaxSessions        int     `toml:"max_sessions"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20620,
			DevMode:     false,
			MaxUploadMB: 100,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Analysis: AnalysisConfig{
			MinDataRows:           5,
			MinDataColumns:        4,
			MaxDictColumns:        8,
			SmallCardinalityMax:   10,
			SmallCardinalityRatio: 0.05,
			NumericCoerceRatio:    0.5,
			HighMissingPercent:    50,
			CorrelationMaxCols:    50,
			TopCorrelations:       10,
			PreviewRows:           10,
			MaxSessions:           16,
		},
		Taxonomy: nil,
	}
}

// GetExeDir returns the directory holding the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func configPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigFile reads a TOML config from path, applied over the defaults.
func LoadConfigFile(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig loads config.toml from the executable directory. On first run
// the file is missing and gets written with the defaults, so the installed
// copy can be edited; a failed write (read-only install dir) is not an error.
func LoadConfig() (*AppConfig, error) {
	cfg, err := LoadConfigFile(configPath())
	if os.IsNotExist(err) {
		cfg = DefaultConfig()
		_ = SaveConfig(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfigFile writes the configuration as TOML to path.
func SaveConfigFile(path string, cfg *AppConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveConfig writes the configuration to config.toml next to the executable.
func SaveConfig(cfg *AppConfig) error {
	return SaveConfigFile(configPath(), cfg)
}

// EnsureDataDir creates the data directory (with an uploads subdirectory)
// next to the executable and returns its path.
func EnsureDataDir(cfg *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := filepath.Join(exeDir, cfg.Data.DataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "uploads"), 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}
