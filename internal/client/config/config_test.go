package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"SERVER_URL", "DB_PATH", "REQUEST_TIMEOUT", "RESYNC_INTERVAL", "LETTERS_DIR", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(envPrefix+name, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	c := Defaults()

	assert.Equal(t, "http://localhost:3000", c.ServerBaseURL)
	assert.Equal(t, "session.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 3*time.Second, c.ResyncInterval)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(Defaults(), *cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CELESTIAL_SERVER_URL", "https://igreja.example.org")
	t.Setenv("CELESTIAL_RESYNC_INTERVAL", "750ms")
	t.Setenv("CELESTIAL_LOG_FORMAT", "zap")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://igreja.example.org", cfg.ServerBaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.ResyncInterval)
	assert.Equal(t, "zap", cfg.LogFormat)
	assert.Equal(t, "session.db", cfg.DatabasePath)
}

func TestLoad_BadEnvDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CELESTIAL_REQUEST_TIMEOUT", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CELESTIAL_REQUEST_TIMEOUT")
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "cfg.json", `{"server_url":"http://api:8080","request_timeout":"2s","resync_interval":5000000000}`},
		{"yaml", "cfg.yaml", "server_url: http://api:8080\nrequest_timeout: 2s\nresync_interval: 5s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CELESTIAL_SERVER_URL", "http://from-env:1")
			t.Setenv("CELESTIAL_LETTERS_DIR", "/tmp/cartas")

			cfg, err := Load(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)

			want := Defaults()
			want.ServerBaseURL = "http://api:8080"
			want.RequestTimeout = 2 * time.Second
			want.ResyncInterval = 5 * time.Second
			want.LettersDir = "/tmp/cartas"
			if diff := cmp.Diff(want, *cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", `{"request_timeout": true}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yml", "resync_interval: [1, 2]\n"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("CELESTIAL_LETTERS_DIR", "")
	require.NoError(t, os.Unsetenv("CELESTIAL_LETTERS_DIR"))
	t.Setenv("CELESTIAL_LOG_LEVEL", "warn")

	path := writeFile(t, ".env", "CELESTIAL_LETTERS_DIR=docs\nCELESTIAL_LOG_LEVEL=debug\n")
	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "docs", os.Getenv("CELESTIAL_LETTERS_DIR"))
	assert.Equal(t, "warn", os.Getenv("CELESTIAL_LOG_LEVEL"), "existing variables win")

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestValidate(t *testing.T) {
	c := Defaults()
	c.ServerBaseURL = "localhost:3000"
	c.RequestTimeout = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server url")
	assert.Contains(t, err.Error(), "request timeout")
}

func TestFlags_OnlyChangedOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("CELESTIAL_SERVER_URL", "http://from-env:1")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--db", "/var/lib/celestial.db", "-i", "10s"}))

	cfg, err := f.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:1", cfg.ServerBaseURL)
	assert.Equal(t, "/var/lib/celestial.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.ResyncInterval)
	assert.Empty(t, f.ConfigPath())
}

func TestFlags_ConfigPathAndInvalidResult(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "c.yaml", "db_path: from-file.db\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", path, "--timeout", "0s"}))
	assert.Equal(t, path, f.ConfigPath())

	_, err := f.Resolve()
	require.Error(t, err)

	require.NoError(t, fs.Set("timeout", "1s"))
	cfg, err := f.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DatabasePath)
	assert.Equal(t, time.Second, cfg.RequestTimeout)
}

func TestFlags_BadValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"--resync", "abc"}))
}
