package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWebAddr    = "127.0.0.1:3000"
	DefaultDevAPIAddr = "127.0.0.1:8000"
	DefaultOutput     = "text"
	DefaultLogLevel   = "info"
)

// DefaultCORSOrigins matches the web UI's default listen address.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

type Config struct {
	LogLevel string       `yaml:"log_level"`
	API      APIConfig    `yaml:"api"`
	Web      WebConfig    `yaml:"web"`
	DevAPI   DevAPIConfig `yaml:"dev_api"`
	CLI      CLIConfig    `yaml:"cli"`
}

// APIConfig holds the backend URLs; empty values fall through to the
// environment resolver's defaults.
type APIConfig struct {
	InternalURL string `yaml:"internal_url"`
	PublicURL   string `yaml:"public_url"`
}

type WebConfig struct {
	Addr       string `yaml:"addr"`
	SessionKey string `yaml:"session_key"`
}

type DevAPIConfig struct {
	Addr        string   `yaml:"addr"`
	SQLitePath  string   `yaml:"sqlite_path"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type CLIConfig struct {
	Output string `yaml:"output"`
}

func Default(home string) Config {
	stateDir := filepath.Join(home, ".local", "state", "geonosis")

	return Config{
		LogLevel: DefaultLogLevel,
		Web: WebConfig{
			Addr: DefaultWebAddr,
		},
		DevAPI: DevAPIConfig{
			Addr:        DefaultDevAPIAddr,
			SQLitePath:  filepath.Join(stateDir, "dev-api.db"),
			CORSOrigins: append([]string(nil), DefaultCORSOrigins...),
		},
		CLI: CLIConfig{
			Output: DefaultOutput,
		},
	}
}

func ConfigPath(home string) string {
	return filepath.Join(home, ".config", "geonosis", "config.yaml")
}

// LoadOrInit reads the config file, writing defaults for any missing field.
func LoadOrInit(home string) (Config, error) {
	path := ConfigPath(home)
	defaults := Default(home)

	cfg, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := SaveFile(path, defaults); err != nil {
				return Config{}, err
			}
			return defaults, nil
		}
		return Config{}, err
	}

	merged := Merge(defaults, cfg)
	if !reflect.DeepEqual(merged, cfg) {
		if err := SaveFile(path, merged); err != nil {
			return Config{}, err
		}
	}

	return merged, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return normalize(cfg), nil
}

func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(normalize(cfg))
	if err != nil {
		return err
	}

	// The file may carry a session key.
	return os.WriteFile(path, data, 0o600)
}

func Merge(defaults Config, user Config) Config {
	out := normalize(defaults)
	in := normalize(user)

	if in.LogLevel != "" {
		out.LogLevel = in.LogLevel
	}

	if in.API.InternalURL != "" {
		out.API.InternalURL = in.API.InternalURL
	}
	if in.API.PublicURL != "" {
		out.API.PublicURL = in.API.PublicURL
	}

	if in.Web.Addr != "" {
		out.Web.Addr = in.Web.Addr
	}
	if in.Web.SessionKey != "" {
		out.Web.SessionKey = in.Web.SessionKey
	}

	if in.DevAPI.Addr != "" {
		out.DevAPI.Addr = in.DevAPI.Addr
	}
	if in.DevAPI.SQLitePath != "" {
		out.DevAPI.SQLitePath = in.DevAPI.SQLitePath
	}
	if len(in.DevAPI.CORSOrigins) > 0 {
		out.DevAPI.CORSOrigins = in.DevAPI.CORSOrigins
	}

	if in.CLI.Output != "" {
		out.CLI.Output = in.CLI.Output
	}

	return out
}

func normalize(cfg Config) Config {
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	cfg.API.InternalURL = strings.TrimSpace(cfg.API.InternalURL)
	cfg.API.PublicURL = strings.TrimSpace(cfg.API.PublicURL)
	cfg.Web.Addr = strings.TrimSpace(cfg.Web.Addr)
	cfg.Web.SessionKey = strings.TrimSpace(cfg.Web.SessionKey)
	cfg.DevAPI.Addr = strings.TrimSpace(cfg.DevAPI.Addr)
	cfg.DevAPI.SQLitePath = strings.TrimSpace(cfg.DevAPI.SQLitePath)
	cfg.DevAPI.CORSOrigins = normalizeList(cfg.DevAPI.CORSOrigins)
	cfg.CLI.Output = strings.TrimSpace(cfg.CLI.Output)
	return cfg
}

func normalizeList(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SplitList parses a comma separated value into a normalized list.
func SplitList(raw string) []string {
	return normalizeList(strings.Split(raw, ","))
}
