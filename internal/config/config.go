package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings despensa needs to reach the backend.
type Config struct {
	APIURL    string
	Timeout   time.Duration
	UsuarioID int64
	LogLevel  string
	LogFile   string
}

// EnvAPIURL overrides api_url when set.
const EnvAPIURL = "DESPENSA_API_URL"

const (
	defaultConfigPath = "~/.config/despensa/config.toml"
	defaultAPIURL     = "http://127.0.0.1:8080/api"
	defaultTimeout    = 10 * time.Second
	defaultUsuarioID  = 1
	defaultLogLevel   = "info"
	defaultLogFile    = "~/.local/state/despensa/despensa.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:    defaultAPIURL,
		Timeout:   defaultTimeout,
		UsuarioID: defaultUsuarioID,
		LogLevel:  defaultLogLevel,
		LogFile:   mustExpand(defaultLogFile),
	}
}

// Load locates and parses the despensa config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		UsuarioID      int64  `toml:"usuario_id"`
		LogLevel       string `toml:"log_level"`
		LogFile        string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.UsuarioID > 0 {
		cfg.UsuarioID = raw.UsuarioID
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
