package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvFile    = ".env"
	ConfigFile = "config.yaml"
)

// Environment overrides, applied after config.yaml.
const (
	EnvStoreDriver        = "QUILL_STORE_DRIVER"
	EnvStorePath          = "QUILL_STORE_PATH"
	EnvAddr               = "QUILL_ADDR"
	EnvLogLevel           = "QUILL_LOG_LEVEL"
	EnvAuthorPasswordHash = "QUILL_AUTHOR_PASSWORD_HASH"
	EnvAllowedOrigins     = "QUILL_ALLOWED_ORIGINS"
)

type AppConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Blog    BlogConfig    `yaml:"blog"`
}

type StorageConfig struct {
	// Driver is "json" (a single posts file) or "badger" (a database directory).
	Driver string `yaml:"driver" validate:"oneof=json badger"`
	Path   string `yaml:"path" validate:"required"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// AuthorPasswordHash is a bcrypt hash. When set, creating, editing and
	// deleting posts requires HTTP basic auth with the matching password.
	AuthorPasswordHash string   `yaml:"author_password_hash"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Pretty bool   `yaml:"pretty"`
}

type BlogConfig struct {
	PostsPerPage   int `yaml:"posts_per_page" validate:"gte=0"`
	WordsPerMinute int `yaml:"words_per_minute" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no config file exists.
func Default() AppConfig {
	return AppConfig{
		Storage: StorageConfig{Driver: "json", Path: filepath.Join("data", "posts.json")},
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Blog:    BlogConfig{PostsPerPage: 5, WordsPerMinute: 200},
	}
}

// Load reads basePath/.env and basePath/config.yaml on top of the defaults,
// then applies environment overrides. Both files are optional. A relative
// store path is resolved against basePath.
func Load(basePath string) (*AppConfig, error) {
	// .env never overrides variables already set in the environment
	_ = godotenv.Load(filepath.Join(basePath, EnvFile))

	c := Default()

	data, err := os.ReadFile(filepath.Join(basePath, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	c.applyEnv()
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if basePath != "" && !filepath.IsAbs(c.Storage.Path) {
		c.Storage.Path = filepath.Join(basePath, c.Storage.Path)
	}
	return &c, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv(EnvStoreDriver); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvAuthorPasswordHash); v != "" {
		c.Server.AuthorPasswordHash = v
	}
	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
}

// GetBasePath walks up from the working directory to the first directory
// holding a config.yaml. It falls back to the working directory.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
