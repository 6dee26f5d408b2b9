package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file, env and flags, in
// that order of increasing precedence.
type Config struct {
	HTTPAddr        string `json:"httpAddr" yaml:"httpAddr"`
	RedisAddr       string `json:"redisAddr" yaml:"redisAddr"`
	BaseURL         string `json:"baseUrl" yaml:"baseUrl"`
	RoutePrefix     string `json:"routePrefix" yaml:"routePrefix"`
	LinkRoutePrefix string `json:"linkRoutePrefix" yaml:"linkRoutePrefix"`
	AllowOrigin     string `json:"allowOrigin" yaml:"allowOrigin"`
	SlugLength      int    `json:"slugLength" yaml:"slugLength"`
	MaxAttempts     int    `json:"maxAttempts" yaml:"maxAttempts"`
}

// DefaultConfig returns built-in defaults.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":9090",
		RedisAddr:       "localhost:6379",
		BaseURL:         "http://localhost:9090",
		RoutePrefix:     "/t",
		LinkRoutePrefix: "/l",
		AllowOrigin:     "*",
		SlugLength:      10,
		MaxAttempts:     5,
	}
}

// LoadConfig reads configuration from a JSON or YAML file by extension. An
// empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

// FromEnv overlays SHORTLINK_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SHORTLINK_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SHORTLINK_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SHORTLINK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SHORTLINK_ROUTE_PREFIX"); v != "" {
		cfg.RoutePrefix = v
	}
	if v := os.Getenv("SHORTLINK_LINK_ROUTE_PREFIX"); v != "" {
		cfg.LinkRoutePrefix = v
	}
	if v := os.Getenv("SHORTLINK_ALLOW_ORIGIN"); v != "" {
		cfg.AllowOrigin = v
	}
	if v := os.Getenv("SHORTLINK_SLUG_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SlugLength = n
		}
	}
	if v := os.Getenv("SHORTLINK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxAttempts = n
		}
	}
}
