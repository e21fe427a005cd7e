// Package config resolves where and how atelier stores its data. Values are
// layered: defaults, then the optional YAML file, then ATELIER_* environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend selects the persistence variant.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFlat   Backend = "flat"
)

// FlatDriver selects the key space behind the flat variant.
type FlatDriver string

const (
	DriverFile   FlatDriver = "file"
	DriverSQLite FlatDriver = "sqlite"
	DriverS3     FlatDriver = "s3"
	DriverMemory FlatDriver = "memory"
)

// LogOff disables the log file. LogStderr sends it to stderr instead.
const (
	LogOff    = "off"
	LogStderr = "-"
)

// S3Config locates the bucket used by the s3 flat driver. Credentials come
// from the standard AWS chain.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"path_style"`
	CreateBucket bool   `yaml:"create_bucket"`
}

// Config holds everything needed to open a store.
type Config struct {
	Backend    Backend    `yaml:"backend"`
	DBPath     string     `yaml:"db"`
	FlatDriver FlatDriver `yaml:"flat_driver"`
	DataDir    string     `yaml:"data_dir"`
	S3         S3Config   `yaml:"s3"`
	LogPath    string     `yaml:"log"`
}

// DefaultConfig returns the relational backend under ~/.atelier.
func DefaultConfig(home string) Config {
	base := filepath.Join(home, ".atelier")
	return Config{
		Backend:    BackendSQLite,
		DBPath:     filepath.Join(base, "atelier.db"),
		FlatDriver: DriverFile,
		DataDir:    filepath.Join(base, "data"),
		S3: S3Config{
			Region: "us-east-1",
			Prefix: "atelier/",
		},
		LogPath: filepath.Join(base, "atelier.log"),
	}
}

// DefaultFilePath is the YAML file read when neither a flag nor
// ATELIER_CONFIG names one.
func DefaultFilePath(home string) string {
	return filepath.Join(home, ".atelier", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file and the
// environment. path names the YAML file; empty means ATELIER_CONFIG or the
// default location. A missing file is only an error when it was named
// explicitly.
func Load(path string) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	cfg := DefaultConfig(home)

	explicit := true
	if path == "" {
		path = os.Getenv("ATELIER_CONFIG")
	}
	if path == "" {
		path = DefaultFilePath(home)
		explicit = false
	}
	if err := LoadFile(&cfg, path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return Config{}, err
		}
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays ATELIER_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("ATELIER_BACKEND"); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := os.Getenv("ATELIER_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("ATELIER_FLAT_DRIVER"); v != "" {
		cfg.FlatDriver = FlatDriver(v)
	}
	if v := os.Getenv("ATELIER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ATELIER_S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("ATELIER_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("ATELIER_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v, ok := os.LookupEnv("ATELIER_S3_PREFIX"); ok {
		cfg.S3.Prefix = v
	}
	if v := os.Getenv("ATELIER_S3_PATH_STYLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.S3.UsePathStyle = b
		}
	}
	if v := os.Getenv("ATELIER_S3_CREATE_BUCKET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.S3.CreateBucket = b
		}
	}
	if v := os.Getenv("ATELIER_LOG"); v != "" {
		cfg.LogPath = v
	}
}

// Validate rejects unknown backends and drivers and incomplete locations.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
		return nil
	case BackendFlat:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendFlat)
	}

	switch c.FlatDriver {
	case DriverFile, DriverSQLite:
		if c.DataDir == "" {
			return fmt.Errorf("flat %s driver requires a data directory", c.FlatDriver)
		}
	case DriverS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("flat s3 driver requires a bucket (ATELIER_S3_BUCKET)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown flat driver %q", c.FlatDriver)
	}
	return nil
}

// FlatKVPath is the database file used by the sqlite flat driver.
func (c Config) FlatKVPath() string {
	return filepath.Join(c.DataDir, "kv.db")
}
