package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags binds the configuration flags to a flag set. Only flags the user
// actually set override earlier sources.
type Flags struct {
	fs *pflag.FlagSet

	configPath     string
	serverBaseURL  string
	databasePath   string
	requestTimeout time.Duration
	resyncInterval time.Duration
	lettersDir     string
	logLevel       string
	logFormat      string
}

// RegisterFlags defines the configuration flags on fs. Defaults shown in
// help are the built-in ones.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := Defaults()
	f := &Flags{fs: fs}
	fs.StringVarP(&f.configPath, "config", "c", "", "path to a JSON or YAML config file")
	fs.StringVarP(&f.serverBaseURL, "server", "a", d.ServerBaseURL, "base URL of the church service")
	fs.StringVar(&f.databasePath, "db", d.DatabasePath, "path of the session database")
	fs.DurationVar(&f.requestTimeout, "timeout", d.RequestTimeout, "per-request timeout")
	fs.DurationVarP(&f.resyncInterval, "resync", "i", d.ResyncInterval, "session resync interval")
	fs.StringVar(&f.lettersDir, "letters-dir", d.LettersDir, "directory for member letters")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", d.LogFormat, "log format (text, json, zap)")
	return f
}

func (f *Flags) ConfigPath() string {
	return f.configPath
}

// Apply overlays the flags explicitly set on the command line.
func (f *Flags) Apply(cfg *Config) {
	set := func(name string, fn func()) {
		if f.fs.Changed(name) {
			fn()
		}
	}
	set("server", func() { cfg.ServerBaseURL = f.serverBaseURL })
	set("db", func() { cfg.DatabasePath = f.databasePath })
	set("timeout", func() { cfg.RequestTimeout = f.requestTimeout })
	set("resync", func() { cfg.ResyncInterval = f.resyncInterval })
	set("letters-dir", func() { cfg.LettersDir = f.lettersDir })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
}

// Resolve loads the configuration from every source in order and validates
// it.
func (f *Flags) Resolve() (*Config, error) {
	cfg, err := Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
