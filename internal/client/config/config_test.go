package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://localhost:8000" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Log.Level != "Info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Token.Path == "" {
		t.Error("token path unset")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  url: https://films.example.com\nlog:\n  level: Debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "https://films.example.com" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Log.Level != "Debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: valid"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestLoad_ExpandsTokenPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("token:\n  path: ~/state/token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if strings.HasPrefix(cfg.Token.Path, "~") {
		t.Errorf("token path not expanded: %q", cfg.Token.Path)
	}
}
