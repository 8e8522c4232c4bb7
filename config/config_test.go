package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvStoreDriver, EnvStorePath, EnvAddr, EnvLogLevel, EnvAuthorPasswordHash, EnvAllowedOrigins} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "json", c.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "posts.json"), c.Storage.Path)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 5, c.Blog.PostsPerPage)
	assert.Equal(t, 200, c.Blog.WordsPerMinute)
	assert.Empty(t, c.Server.AuthorPasswordHash)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ConfigFile, `
storage:
  driver: Badger
  path: /var/lib/quill
server:
  addr: ":9090"
  allowed_origins:
    - https://blog.example
logging:
  level: DEBUG
  pretty: true
blog:
  posts_per_page: 10
`)

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "badger", c.Storage.Driver)
	assert.Equal(t, "/var/lib/quill", c.Storage.Path)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, []string{"https://blog.example"}, c.Server.AllowedOrigins)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Logging.Pretty)
	assert.Equal(t, 10, c.Blog.PostsPerPage)
	assert.Equal(t, 200, c.Blog.WordsPerMinute)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ConfigFile, "server:\n  addr: \":9090\"\n")
	writeFile(t, dir, EnvFile, "QUILL_LOG_LEVEL=warn\n")
	// t.Setenv restores the original value; unset it so .env can apply
	require.NoError(t, os.Unsetenv(EnvLogLevel))

	t.Setenv(EnvAddr, ":7070")
	t.Setenv(EnvStorePath, "posts.json")
	t.Setenv(EnvAuthorPasswordHash, "$2a$10$hash")
	t.Setenv(EnvAllowedOrigins, "https://a.example, https://b.example,")

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, filepath.Join(dir, "posts.json"), c.Storage.Path)
	assert.Equal(t, "$2a$10$hash", c.Server.AuthorPasswordHash)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.AllowedOrigins)
	assert.Equal(t, "warn", c.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
		env    map[string]string
	}{
		{name: "malformed yaml", config: "storage: [\n"},
		{name: "unknown driver", config: "storage:\n  driver: sqlite\n"},
		{name: "unknown driver from env", env: map[string]string{EnvStoreDriver: "mongo"}},
		{name: "unknown log level", config: "logging:\n  level: loud\n"},
		{name: "negative page size", config: "blog:\n  posts_per_page: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.config != "" {
				writeFile(t, dir, ConfigFile, tt.config)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestGetBasePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ConfigFile, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(cwd) })

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(GetBasePath())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInitLogger(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	oldLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(oldLevel)
		log.Logger = oldLogger
	})

	tests := []struct {
		name      string
		cfg       LoggingConfig
		wantLevel zerolog.Level
	}{
		{name: "debug", cfg: LoggingConfig{Level: "debug"}, wantLevel: zerolog.DebugLevel},
		{name: "warn", cfg: LoggingConfig{Level: "warn"}, wantLevel: zerolog.WarnLevel},
		{name: "empty defaults to info", cfg: LoggingConfig{}, wantLevel: zerolog.InfoLevel},
		{name: "garbage defaults to info", cfg: LoggingConfig{Level: "loud"}, wantLevel: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			initLogger(tt.cfg, &buf)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}

	var buf bytes.Buffer
	initLogger(LoggingConfig{Level: "info"}, &buf)
	log.Debug().Msg("hidden")
	log.Info().Str("post_id", "abc").Msg("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"post_id":"abc"`)

	buf.Reset()
	initLogger(LoggingConfig{Level: "info", Pretty: true}, &buf)
	log.Info().Msg("pretty")
	assert.Contains(t, buf.String(), "pretty")
	assert.NotContains(t, buf.String(), `"message"`)
}
