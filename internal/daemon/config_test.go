package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 27310 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 27310)
	}
	if cfg.User.ID != "local" {
		t.Errorf("User.ID = %q, want local", cfg.User.ID)
	}
	if cfg.Storage.CoalesceWindowMS != 50 {
		t.Errorf("Storage.CoalesceWindowMS = %d, want 50", cfg.Storage.CoalesceWindowMS)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.QuietStart != "22:00" {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RESETDOPA_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 27310 {
		t.Errorf("Port = %d, want default", cfg.API.Port)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RESETDOPA_HOME", home)

	content := "[api]\nport = 9999\n\n[notifications]\nenabled = false\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.API.Port)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications should be disabled by override")
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("unset fields should keep defaults, Host = %q", cfg.API.Host)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("RESETDOPA_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 4242
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.Port != 4242 {
		t.Errorf("Port = %d, want 4242", loaded.API.Port)
	}
}
