package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	dirName    = "socialctl"
	fileName   = "config.json"
	dirPerms   = 0700
	filePerms  = 0600
	DefaultURL = "http://localhost:8080"
)

// Config is what socialctl keeps between runs. Tokens are keyed by server URL,
// so pointing --server at another deployment never sends it a foreign token.
type Config struct {
	ServerURL string            `json:"server_url"`
	Tokens    map[string]string `json:"tokens,omitempty"`
}

func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads the config file. A missing file gives an empty config pointing at DefaultURL.
func Load() (*Config, error) {
	cfg := &Config{ServerURL: DefaultURL, Tokens: map[string]string{}}

	p, err := Path()
	if err != nil {
		return cfg, nil
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	if cfg.Tokens == nil {
		cfg.Tokens = map[string]string{}
	}
	return cfg, nil
}

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

// Clear forgets every server and token.
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

func serverKey(serverURL string) string {
	return strings.TrimRight(strings.TrimSpace(serverURL), "/")
}

// TokenFor returns the token stored for serverURL, ignoring a trailing slash.
func (c *Config) TokenFor(serverURL string) string {
	return c.Tokens[serverKey(serverURL)]
}

func (c *Config) SetToken(serverURL, token string) {
	if c.Tokens == nil {
		c.Tokens = map[string]string{}
	}
	c.Tokens[serverKey(serverURL)] = token
}

// ForgetToken drops the token of serverURL and reports whether there was one.
func (c *Config) ForgetToken(serverURL string) bool {
	key := serverKey(serverURL)
	if _, ok := c.Tokens[key]; !ok {
		return false
	}
	delete(c.Tokens, key)
	return true
}

func (c *Config) HasToken(serverURL string) bool {
	return c.TokenFor(serverURL) != ""
}

// Servers lists the servers holding a token, sorted.
func (c *Config) Servers() []string {
	servers := make([]string, 0, len(c.Tokens))
	for server := range c.Tokens {
		servers = append(servers, server)
	}
	sort.Strings(servers)
	return servers
}
