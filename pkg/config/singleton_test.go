package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetSingleton() {
	globalConfig = nil
	initOnce = *new(sync.Once)
}

func TestInitialize(t *testing.T) {
	resetSingleton()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  listen_address: "127.0.0.1:8484"

telemetry:
  logging:
    level: "info"
    format: "json"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	err := Initialize(configPath)
	if err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}

	if cfg.Server.ListenAddress != "127.0.0.1:8484" {
		t.Errorf("expected listen address %q, got %q", "127.0.0.1:8484", cfg.Server.ListenAddress)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetSingleton()

	tmpDir := t.TempDir()
	configPath1 := filepath.Join(tmpDir, "config1.yaml")
	configPath2 := filepath.Join(tmpDir, "config2.yaml")

	if err := os.WriteFile(configPath1, []byte(`
server:
  listen_address: "127.0.0.1:1111"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := os.WriteFile(configPath2, []byte(`
server:
  listen_address: "127.0.0.1:2222"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath1); err != nil {
		t.Fatalf("first initialize failed: %v", err)
	}
	if err := Initialize(configPath2); err != nil {
		t.Fatalf("second initialize returned error: %v", err)
	}

	cfg := GetConfig()
	if cfg.Server.ListenAddress != "127.0.0.1:1111" {
		t.Errorf("second Initialize should be ignored, got listen address %q", cfg.Server.ListenAddress)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetSingleton()

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("expected nil config before initialization, got %+v", cfg)
	}
}

func TestSetConfig(t *testing.T) {
	resetSingleton()

	cfg := MinimalConfig()
	SetConfig(cfg)

	got := GetConfig()
	if got != cfg {
		t.Error("GetConfig did not return the config set by SetConfig")
	}
}

func TestMustGetConfig_PanicsWhenUninitialized(t *testing.T) {
	resetSingleton()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetConfig to panic when uninitialized")
		}
	}()

	MustGetConfig()
}

func TestReloadConfig(t *testing.T) {
	resetSingleton()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(`
server:
  listen_address: "127.0.0.1:1111"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// Rewrite the file and reload
	if err := os.WriteFile(configPath, []byte(`
server:
  listen_address: "127.0.0.1:2222"
`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	if err := ReloadConfig(configPath); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	cfg := GetConfig()
	if cfg.Server.ListenAddress != "127.0.0.1:2222" {
		t.Errorf("expected reloaded listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestReloadConfig_KeepsOldConfigOnError(t *testing.T) {
	resetSingleton()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte(`
server:
  listen_address: "127.0.0.1:1111"
`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	// Break the file
	if err := os.WriteFile(configPath, []byte(`
history:
  enabled: true
  backend: "cassandra"
`), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	if err := ReloadConfig(configPath); err == nil {
		t.Fatal("expected reload to fail for invalid config")
	}

	cfg := GetConfig()
	if cfg.Server.ListenAddress != "127.0.0.1:1111" {
		t.Errorf("failed reload should keep old config, got listen address %q", cfg.Server.ListenAddress)
	}
}
