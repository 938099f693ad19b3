package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no stray clipvault.yaml is found.
	chdir(t, t.TempDir())

	c, _, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Database.Type != "sqlite" {
		t.Errorf("database.type = %q", c.Database.Type)
	}
	if c.History.MaxUnpinnedItems != 500 {
		t.Errorf("history.max_unpinned_items = %d", c.History.MaxUnpinnedItems)
	}
	if !c.Capture.Plain || !c.Capture.Rich {
		t.Error("capture defaults should enable both representations")
	}
	if c.Capture.IntervalMS != 300 {
		t.Errorf("capture.interval_ms = %d", c.Capture.IntervalMS)
	}
	if !c.Filter.Enabled {
		t.Error("filter should default to enabled")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "history:\n  max_unpinned_items: 42\nfilter:\n  enabled: false\n  excluded_app_ids:\n    - com.example.banking\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c, found, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found {
		t.Error("explicit file should be reported as found")
	}
	if c.History.MaxUnpinnedItems != 42 {
		t.Errorf("file value not applied: %d", c.History.MaxUnpinnedItems)
	}
	if c.Filter.Enabled {
		t.Error("filter.enabled override not applied")
	}
	if len(c.Filter.ExcludedAppIDs) != 1 || c.Filter.ExcludedAppIDs[0] != "com.example.banking" {
		t.Errorf("excluded_app_ids = %v", c.Filter.ExcludedAppIDs)
	}
	// Untouched keys keep their defaults.
	if c.Database.Type != "sqlite" {
		t.Errorf("database.type = %q", c.Database.Type)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CLIPVAULT_HISTORY_MAX_UNPINNED_ITEMS", "7")

	c, _, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.History.MaxUnpinnedItems != 7 {
		t.Errorf("env override not applied: %d", c.History.MaxUnpinnedItems)
	}
}

func TestLoadReportsMissingFile(t *testing.T) {
	chdir(t, t.TempDir())

	c, found, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Error("no config file exists, found should be false")
	}
	// A first run still yields a fully usable defaults-based config.
	if c.History.MaxUnpinnedItems != 500 {
		t.Errorf("defaults missing on first run: max_unpinned_items = %d", c.History.MaxUnpinnedItems)
	}
}

func TestFirstRunWritesDefaultConfig(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("user config dir not overridable via XDG_CONFIG_HOME")
	}
	chdir(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c, found, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Fatal("fresh config dir should report no file found")
	}
	if err := WriteFile(&c, false); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	path, err := getConfigPath(false)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	// The written file is picked up on the next load.
	if _, found, err := Load(nil, ""); err != nil || !found {
		t.Errorf("written config not found on reload: found=%v err=%v", found, err)
	}
}
