package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	dirName    = "groupchat"
	fileName   = "config.json"
	dirPerms   = 0700
	filePerms  = 0600
	DefaultURL = "http://localhost:8080"

	EnvServerURL = "GROUPCHAT_URL"
	EnvSiteURL   = "GROUPCHAT_SITE_URL"
)

// Config holds persisted client configuration.
type Config struct {
	ServerURL string `json:"server_url"`
	// SiteURL receives binary uploads; empty means ServerURL.
	SiteURL string `json:"site_url,omitempty"`
	// User is the local chat identity, "<name>#<suffix>".
	User string `json:"user,omitempty"`
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads the config from disk. Returns a default Config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return &Config{ServerURL: DefaultURL}, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{ServerURL: DefaultURL}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, filePerms)
}

// Clear removes the config file.
func Clear() error {
	p, err := Path()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// WithEnv returns a copy with GROUPCHAT_URL and GROUPCHAT_SITE_URL applied. A .env file
// in the working directory is read first; it never overrides variables already set.
func (c *Config) WithEnv() *Config {
	_ = godotenv.Load()

	out := *c
	if v := os.Getenv(EnvServerURL); v != "" {
		out.ServerURL = v
	}
	if v := os.Getenv(EnvSiteURL); v != "" {
		out.SiteURL = v
	}
	return &out
}

// HasUser reports whether a chat identity is configured.
func (c *Config) HasUser() bool {
	return c.User != ""
}

// Site returns the upload URL, falling back to the server URL.
func (c *Config) Site() string {
	if c.SiteURL != "" {
		return c.SiteURL
	}
	return c.ServerURL
}
