package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		configPathEnv, dataDirEnv, databaseDSNEnv, redisAddrEnv,
		crmBaseURLEnv, crmTokenEnv, proxyURLEnv,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Storage.Backend != BackendJSON || cfg.Storage.SeenBackend != SeenBackendFile {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Fetch.Workers != 4 || cfg.Fetch.MaxPerSource != 30 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if len(cfg.Sources) != 7 {
		t.Fatalf("expected 7 default sources, got %d", len(cfg.Sources))
	}
	if len(cfg.Classifier.Categories) != 5 {
		t.Fatalf("expected 5 default categories, got %d", len(cfg.Classifier.Categories))
	}
	if cfg.Classifier.Categories[0].Name != "education" {
		t.Fatalf("category priority order broken: %+v", cfg.Classifier.Categories[0])
	}
	if cfg.Scheduler.Location().String() != "Asia/Almaty" {
		t.Fatalf("unexpected timezone: %s", cfg.Scheduler.Location())
	}
	if cfg.CRM.Enabled {
		t.Fatal("crm must be opt-in")
	}
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
storage:
  backend: postgres
fetch:
  workers: 8
sources:
  - name: Stan.kz
    url: https://stan.kz/
crm:
  enabled: true
  token: yaml-token
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Storage.Backend != BackendPostgres {
		t.Fatalf("yaml backend not applied: %q", cfg.Storage.Backend)
	}
	if cfg.Fetch.Workers != 8 {
		t.Fatalf("yaml workers not applied: %d", cfg.Fetch.Workers)
	}
	if cfg.Fetch.MaxPerSource != 30 {
		t.Fatalf("unset yaml field must keep the default, got %d", cfg.Fetch.MaxPerSource)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Stan.kz" {
		t.Fatalf("yaml sources must replace defaults: %+v", cfg.Sources)
	}
	if !cfg.CRM.Enabled || cfg.CRM.Token != "yaml-token" {
		t.Fatalf("yaml crm settings not applied: %+v", cfg.CRM)
	}
	if len(cfg.Classifier.Categories) != 5 {
		t.Fatal("empty yaml classifier must keep default categories")
	}
}

func TestLoadEnvOverridesWinOverYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
storage:
  dataDir: /from/yaml
crm:
  token: yaml-token
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(dataDirEnv, "/from/env")
	t.Setenv(crmTokenEnv, "env-token")
	t.Setenv(redisAddrEnv, "redis:6380")

	cfg := Load()

	if cfg.Storage.DataDir != "/from/env" {
		t.Fatalf("env must win over yaml: %q", cfg.Storage.DataDir)
	}
	if cfg.CRM.Token != "env-token" {
		t.Fatalf("env token must win: %q", cfg.CRM.Token)
	}
	if cfg.Storage.RedisAddr != "redis:6380" {
		t.Fatalf("redis addr override missing: %q", cfg.Storage.RedisAddr)
	}
}

func TestLoadUnreadableConfigFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	if cfg.Storage.Backend != BackendJSON {
		t.Fatalf("missing file must fall back to defaults, got %q", cfg.Storage.Backend)
	}
}

func TestLoadBadTimezoneReverts(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
scheduler:
  timezone: Not/AZone
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Scheduler.Location().String() != "Asia/Almaty" {
		t.Fatalf("bad timezone must revert to the default, got %s", cfg.Scheduler.Location())
	}
}
