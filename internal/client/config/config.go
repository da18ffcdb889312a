package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the church client.
type Config struct {
	ServerBaseURL  string
	DatabasePath   string
	RequestTimeout time.Duration
	ResyncInterval time.Duration
	LettersDir     string
	LogLevel       string
	LogFormat      string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ServerBaseURL:  "http://localhost:3000",
		DatabasePath:   "session.db",
		RequestTimeout: 10 * time.Second,
		ResyncInterval: 3 * time.Second,
		LettersDir:     "cartas",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load applies defaults, then the environment, then the file at path when
// path is not empty. Flags are applied by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return nil, err
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server url %q must be an absolute http(s) URL", c.ServerBaseURL))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.ResyncInterval <= 0 {
		errs = append(errs, fmt.Errorf("resync interval must be positive, got %s", c.ResyncInterval))
	}
	return errors.Join(errs...)
}
