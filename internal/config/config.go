package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const appName = "habitboard"

// Storage drivers.
const (
	DriverGist  = "gist"
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Config holds all habitboard configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Gist       GistConfig       `toml:"gist"`
	S3         S3Config         `toml:"s3"`
	Local      LocalConfig      `toml:"local"`
	Appearance AppearanceConfig `toml:"appearance"`
	Server     ServerConfig     `toml:"server"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	LogLevel  string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	BackupDir string `toml:"backup_dir,omitempty"`
}

// StorageConfig selects where the document lives.
type StorageConfig struct {
	Driver     string `toml:"driver" validate:"oneof=gist s3 local"`
	TimeoutSec int    `toml:"timeout_sec" validate:"gte=0,lte=300"`
	Mirror     bool   `toml:"mirror"`
}

// GistConfig holds GitHub gist settings.
type GistConfig struct {
	ID       string `toml:"id,omitempty"`
	Token    string `toml:"token,omitempty"`
	Filename string `toml:"filename,omitempty"`
	APIURL   string `toml:"api_url,omitempty" validate:"omitempty,url"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Bucket          string `toml:"bucket,omitempty"`
	Key             string `toml:"key,omitempty"`
	Region          string `toml:"region,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty" validate:"omitempty,url"`
	PathStyle       bool   `toml:"path_style"`
	AccessKeyID     string `toml:"access_key_id,omitempty"`
	SecretAccessKey string `toml:"secret_access_key,omitempty"`
}

// LocalConfig holds the local snapshot history settings.
type LocalConfig struct {
	Path string `toml:"path,omitempty"`
	Keep int    `toml:"keep" validate:"gte=0"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for `habitboard serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr" validate:"required,hostname_port"`
	CORSOrigins []string `toml:"cors_origins,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel: "warn",
		},
		Storage: StorageConfig{
			Driver:     DriverGist,
			TimeoutSec: 15,
			Mirror:     true,
		},
		Gist: GistConfig{
			Filename: "habit_data.json",
		},
		S3: S3Config{
			Key:    "habit_data.json",
			Region: "us-east-1",
		},
		Local: LocalConfig{
			Keep: 50,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8788",
		},
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// HistoryPath returns the snapshot database path.
func HistoryPath(cfg Config) string {
	if cfg.Local.Path != "" {
		return cfg.Local.Path
	}
	return filepath.Join(DataDir(), appName+".db")
}

// BackupPath returns where a fallback copy of an unsaved document is written.
func BackupPath(cfg Config) string {
	dir := cfg.General.BackupDir
	if dir == "" {
		dir = DataDir()
	}
	return filepath.Join(dir, "habit_tracker_backup.json")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// applyEnv overlays environment variables; env wins over the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HABITBOARD_STORAGE"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("HABITBOARD_S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if v := os.Getenv("HABITBOARD_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("HABITBOARD_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("HABITBOARD_S3_PATH_STYLE"); v != "" {
		cfg.S3.PathStyle, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("HABITBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetGistToken returns the GitHub token from env var or config, in that order.
func GetGistToken(cfg Config) string {
	if key := os.Getenv("GITHUB_TOKEN"); key != "" {
		return key
	}
	return cfg.Gist.Token
}

// GetGistID returns the gist id from env var or config, in that order.
func GetGistID(cfg Config) string {
	if id := os.Getenv("GIST_ID"); id != "" {
		return id
	}
	return cfg.Gist.ID
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
