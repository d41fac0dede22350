package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	path, err := Path()
	if err != nil {
		t.Fatalf("Path() returned error: %v", err)
	}
	return path
}

func writeConfigFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file points at the default server", func(t *testing.T) {
		isolateConfigDir(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Errorf("expected ServerURL %s, got %s", DefaultURL, cfg.ServerURL)
		}
		if cfg.HasToken(DefaultURL) {
			t.Errorf("expected no token for %s", DefaultURL)
		}
	})

	t.Run("reads tokens per server", func(t *testing.T) {
		path := isolateConfigDir(t)
		writeConfigFile(t, path, `{"server_url": "https://a.example.com", "tokens": {"https://a.example.com": "ta", "https://b.example.com": "tb"}}`)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.TokenFor("https://a.example.com/") != "ta" {
			t.Errorf("expected token ta, got %q", cfg.TokenFor("https://a.example.com/"))
		}
		if cfg.TokenFor("https://b.example.com") != "tb" {
			t.Errorf("expected token tb, got %q", cfg.TokenFor("https://b.example.com"))
		}
		if cfg.HasToken("https://c.example.com") {
			t.Error("expected no token for an unknown server")
		}
	})

	t.Run("empty fields fall back", func(t *testing.T) {
		path := isolateConfigDir(t)
		writeConfigFile(t, path, `{"server_url": ""}`)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Errorf("expected ServerURL to default to %s, got %s", DefaultURL, cfg.ServerURL)
		}
		cfg.SetToken(DefaultURL, "x")
		if !cfg.HasToken(DefaultURL) {
			t.Error("expected SetToken to work on a loaded config without tokens")
		}
	})

	t.Run("rejects malformed file", func(t *testing.T) {
		path := isolateConfigDir(t)
		writeConfigFile(t, path, `{not json`)

		if _, err := Load(); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := isolateConfigDir(t)

	cfg := &Config{ServerURL: "https://a.example.com"}
	cfg.SetToken("https://a.example.com/", "ta")
	cfg.SetToken("https://b.example.com", "tb")
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat config file: %v", err)
	}
	if info.Mode().Perm() != os.FileMode(filePerms) {
		t.Errorf("expected file permissions %o, got %o", os.FileMode(filePerms), info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
	if got := loaded.Servers(); !reflect.DeepEqual(got, []string{"https://a.example.com", "https://b.example.com"}) {
		t.Errorf("unexpected servers %v", got)
	}
}

func TestForgetToken(t *testing.T) {
	cfg := &Config{ServerURL: DefaultURL}
	cfg.SetToken("https://a.example.com", "ta")
	cfg.SetToken("https://b.example.com", "tb")

	if !cfg.ForgetToken("https://a.example.com/") {
		t.Fatal("expected a token to be forgotten")
	}
	if cfg.ForgetToken("https://a.example.com") {
		t.Error("expected second forget to report nothing removed")
	}
	if cfg.TokenFor("https://b.example.com") != "tb" {
		t.Error("expected other server token to survive")
	}
	if cfg.ServerURL != DefaultURL {
		t.Errorf("expected server URL to be kept, got %s", cfg.ServerURL)
	}
}

func TestClear(t *testing.T) {
	t.Run("removes existing config file", func(t *testing.T) {
		path := isolateConfigDir(t)

		cfg := &Config{ServerURL: DefaultURL}
		cfg.SetToken(DefaultURL, "clear-test")
		if err := Save(cfg); err != nil {
			t.Fatalf("Save() returned error: %v", err)
		}
		if err := Clear(); err != nil {
			t.Fatalf("Clear() returned error: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected config file to be deleted")
		}
	})

	t.Run("returns nil when file does not exist", func(t *testing.T) {
		isolateConfigDir(t)

		if err := Clear(); err != nil {
			t.Errorf("expected Clear() to return nil for missing file, got %v", err)
		}
	})
}
