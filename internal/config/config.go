package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Detector  DetectorConfig  `json:"detector" toml:"detector"`
	Converter ConverterConfig `json:"converter" toml:"converter"`
	Scan      ScanConfig      `json:"scan" toml:"scan"`
	Normalize NormalizeConfig `json:"normalize" toml:"normalize"`
}

type DetectorConfig struct {
	StripTags        bool `json:"strip_tags" toml:"strip_tags"`
	Limit            int  `json:"limit" toml:"limit"`
	BinaryScanLength int  `json:"binary_scan_length" toml:"binary_scan_length"`
}

type ConverterConfig struct {
	MaxInputSize int `json:"max_input_size" toml:"max_input_size"`
}

type ScanConfig struct {
	// Extensions restricts directory scans; empty accepts every file.
	Extensions []string `json:"extensions" toml:"extensions"`
}

type NormalizeConfig struct {
	Target string `json:"target" toml:"target"`
}

// LoadConfig reads a JSON or TOML file, chosen by extension. Fields missing
// from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			BinaryScanLength: 1024 * 1024,
		},
		Converter: ConverterConfig{
			MaxInputSize: 64 * 1024 * 1024,
		},
		Normalize: NormalizeConfig{
			Target: "UTF-8",
		},
	}
}
