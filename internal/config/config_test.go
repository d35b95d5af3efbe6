package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug = false, want true")
	}
	if cfg.CommunityURL != "https://steamcommunity.com" {
		t.Errorf("community url default = %q", cfg.CommunityURL)
	}
	if cfg.APIURL != "https://api.steampowered.com" {
		t.Errorf("api url default = %q", cfg.APIURL)
	}
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("request timeout default = %d, want 30", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "community-url: http://localhost:9000\napi-url: http://localhost:9001\nauth-dir: /tmp/accounts\nproxy-url: socks5://127.0.0.1:1080\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.CommunityURL != "http://localhost:9000" {
		t.Errorf("community url = %q", cfg.CommunityURL)
	}
	if cfg.APIURL != "http://localhost:9001" {
		t.Errorf("api url = %q", cfg.APIURL)
	}
	if cfg.AuthDir != "/tmp/accounts" {
		t.Errorf("auth dir = %q", cfg.AuthDir)
	}
	if cfg.ProxyURL != "socks5://127.0.0.1:1080" {
		t.Errorf("proxy url = %q", cfg.ProxyURL)
	}
}

func TestLoadConfigOptionalMissingFile(t *testing.T) {
	cfg, err := LoadConfigOptional(filepath.Join(t.TempDir(), "missing.yaml"), true)
	if err != nil {
		t.Fatalf("optional load failed: %v", err)
	}
	if cfg.CommunityURL == "" {
		t.Error("optional load did not fall back to defaults")
	}

	if _, err = LoadConfigOptional(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Error("non-optional load of a missing file should fail")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed yaml should fail to load")
	}
}
