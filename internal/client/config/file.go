package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/membrocelestial/internal/timex"
)

// fileConfig is the on-disk shape. Zero values leave the current setting
// untouched.
type fileConfig struct {
	ServerBaseURL  string         `json:"server_url" yaml:"server_url"`
	DatabasePath   string         `json:"db_path" yaml:"db_path"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	ResyncInterval timex.Duration `json:"resync_interval" yaml:"resync_interval"`
	LettersDir     string         `json:"letters_dir" yaml:"letters_dir"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.ServerBaseURL, fc.ServerBaseURL)
	overlay(&cfg.DatabasePath, fc.DatabasePath)
	overlay(&cfg.LettersDir, fc.LettersDir)
	overlay(&cfg.LogLevel, fc.LogLevel)
	overlay(&cfg.LogFormat, fc.LogFormat)
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.ResyncInterval.Duration != 0 {
		cfg.ResyncInterval = fc.ResyncInterval.Duration
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
