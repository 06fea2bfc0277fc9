package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaultmedia.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	vaultDir := t.TempDir()
	path := writeConfig(t, `
vault:
  base_path: `+vaultDir+`
  attachments_folder: media
recraft:
  api_key: rk-test
  style: realistic_image
imagekit:
  private_key: ik-test
  url_endpoint: https://ik.imagekit.io/demo
cache:
  max_age_days: 7
  max_entries: 10
ledger:
  enabled: true
  dsn: file:ledger.db
`)

	cfg, err := LoadConfig(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Vault.BasePath != vaultDir {
		t.Fatalf("unexpected vault path %q", cfg.Vault.BasePath)
	}
	if cfg.Vault.AttachmentsFolder != "media" {
		t.Fatalf("unexpected attachments folder %q", cfg.Vault.AttachmentsFolder)
	}
	if cfg.Recraft.APIKey != "rk-test" || cfg.Recraft.Style != "realistic_image" {
		t.Fatalf("generation settings not applied: %+v", cfg.Recraft)
	}
	if cfg.Cache.MaxAge != 7*24*time.Hour {
		t.Fatalf("unexpected cache retention %v", cfg.Cache.MaxAge)
	}
	if cfg.Cache.MaxEntries != 10 {
		t.Fatalf("unexpected cache entry cap %d", cfg.Cache.MaxEntries)
	}
	if !cfg.Features.Ledger || cfg.Ledger.DSN != "file:ledger.db" {
		t.Fatalf("ledger settings not applied: %+v", cfg.Ledger)
	}
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	vaultDir := t.TempDir()
	cfg, err := LoadConfig(Options{VaultPath: vaultDir})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Vault.BasePath != vaultDir {
		t.Fatalf("vault flag not applied: %q", cfg.Vault.BasePath)
	}
}

func TestLoadConfigVaultFlagOverridesFile(t *testing.T) {
	flagDir := t.TempDir()
	path := writeConfig(t, "vault:\n  base_path: /elsewhere\n")

	cfg, err := LoadConfig(Options{ConfigFile: path, VaultPath: flagDir})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Vault.BasePath != flagDir {
		t.Fatalf("expected flag to win, got %q", cfg.Vault.BasePath)
	}
}

func TestLoadConfigSubcommandFeatures(t *testing.T) {
	cfg, err := LoadConfig(Options{VaultPath: t.TempDir(), Migration: true})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Features.Migration {
		t.Fatal("expected migration feature to be requested")
	}
	if cfg.Features.Generation || cfg.Features.Search {
		t.Fatal("unrequested features must stay off")
	}
}

func TestBuildModule(t *testing.T) {
	module, err := BuildModule(Options{VaultPath: t.TempDir()})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if module.Module == nil || module.Logger == nil {
		t.Fatal("expected module and logger")
	}
}
