// Package config carga la configuración del servidor: archivo YAML opcional
// y después variables de entorno, que pisan lo del archivo.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cat-shelter/internal/adapters/blob"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	App     string        `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Browse  BrowseConfig  `yaml:"browse"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"` // memory|sqlite|postgres
	SQLitePath string `yaml:"sqlite_path"`
	DSN        string `yaml:"dsn"`
	// Seed puebla el store con gatos de ejemplo la primera vez que se crea.
	Seed *bool `yaml:"seed"`
}

func (s StorageConfig) SeedOrDefault() bool {
	if s.Seed != nil {
		return *s.Seed
	}
	return true
}

// BrowseConfig controla la limpieza de sesiones de navegación abandonadas.
type BrowseConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type BlobConfig struct {
	Driver string        `yaml:"driver"` // fs|s3|memory
	FSRoot string        `yaml:"fs_root"`
	S3     blob.S3Config `yaml:"s3"`
}

// BlobStore convierte a la config del factory de blobs.
func (b BlobConfig) BlobStore() blob.Config {
	return blob.Config{
		Driver: blob.Driver(b.Driver),
		FSRoot: b.FSRoot,
		S3:     b.S3,
	}
}

// Load lee path (si no está vacío), aplica env y defaults.
func Load(path string, getenv func(string) string) (*Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if getenv != nil {
		ApplyEnv(&cfg, getenv)
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv pisa los valores con las variables que estén definidas.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.App, "APP_NAME")
	set(&cfg.Server.Port, "PORT")
	set(&cfg.Log.Level, "LOG_LEVEL")
	set(&cfg.Log.Format, "LOG_FORMAT")

	set(&cfg.Storage.Driver, "STORAGE_DRIVER")
	set(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	set(&cfg.Storage.DSN, "DB_DSN")
	if v := strings.TrimSpace(getenv("SEED_DATA")); v != "" {
		seed := strings.EqualFold(v, "true") || v == "1"
		cfg.Storage.Seed = &seed
	}

	set(&cfg.Blob.Driver, "BLOB_DRIVER")
	set(&cfg.Blob.FSRoot, "BLOB_FS_ROOT")
	set(&cfg.Blob.S3.Bucket, "BLOB_S3_BUCKET")
	set(&cfg.Blob.S3.Region, "BLOB_S3_REGION")
	set(&cfg.Blob.S3.Endpoint, "BLOB_S3_ENDPOINT")
	set(&cfg.Blob.S3.AccessKeyID, "BLOB_S3_ACCESS_KEY_ID")
	set(&cfg.Blob.S3.SecretAccessKey, "BLOB_S3_SECRET_ACCESS_KEY")
	if v := strings.TrimSpace(getenv("BLOB_S3_PATH_STYLE")); v != "" {
		cfg.Blob.S3.PathStyle = strings.EqualFold(v, "true")
	}

	if v := strings.TrimSpace(getenv("BROWSE_IDLE_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Browse.IdleTimeout = d
		}
	}
}

// ApplyDefaults completa los campos en cero.
func ApplyDefaults(cfg *Config) {
	if cfg.App == "" {
		cfg.App = "cat-shelter"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Storage.Driver == "" {
		// con DSN se asume Postgres, igual que antes con DB_DSN
		if cfg.Storage.DSN != "" {
			cfg.Storage.Driver = StoragePostgres
		} else {
			cfg.Storage.Driver = StorageSQLite
		}
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/cats.db"
	}
	if cfg.Blob.Driver == "" {
		cfg.Blob.Driver = string(blob.DriverFilesystem)
	}
	if cfg.Blob.FSRoot == "" {
		cfg.Blob.FSRoot = "data/photos"
	}
	if cfg.Browse.IdleTimeout == 0 {
		cfg.Browse.IdleTimeout = 30 * time.Minute
	}
	if cfg.Browse.SweepInterval == 0 {
		cfg.Browse.SweepInterval = time.Minute
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn (DB_DSN) is required for postgres")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Blob.Driver == string(blob.DriverS3) && c.Blob.S3.Bucket == "" {
		return errors.New("blob.s3.bucket (BLOB_S3_BUCKET) is required for s3")
	}
	return nil
}
