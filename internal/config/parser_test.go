package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearInfluxEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"INFLUXDB_HOST", "INFLUXDB_TOKEN", "INFLUXDB_ORG", "INFLUXDB_BUCKET"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	clearInfluxEnv(t)

	cfg, content, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "" {
		t.Fatalf("expected empty content, got %q", content)
	}
	if cfg.Suite.VariantsDir != "variants" {
		t.Fatalf("got variants dir %q", cfg.Suite.VariantsDir)
	}
	if cfg.Suite.Compiler.Binary != "go" || cfg.Suite.Compiler.OptLevel != 3 {
		t.Fatalf("unexpected compiler defaults: %+v", cfg.Suite.Compiler)
	}
	if cfg.Suite.Perf.Duration != 10 || cfg.Suite.Perf.Runs != 1 {
		t.Fatalf("unexpected perf defaults: %+v", cfg.Suite.Perf)
	}
	if cfg.Suite.Data.DB != nil {
		t.Fatalf("no database expected without environment: %+v", cfg.Suite.Data.DB)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	clearInfluxEnv(t)

	path := writeConfig(t, `
suite:
  name: spin-suite
  perf:
    duration: 5
`)

	cfg, content, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Suite.Name != "spin-suite" {
		t.Fatalf("got name %q", cfg.Suite.Name)
	}
	if cfg.Suite.Perf.Duration != 5 {
		t.Fatalf("got duration %d", cfg.Suite.Perf.Duration)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Suite.Perf.Runs != 1 || cfg.Suite.VariantsDir != "variants" {
		t.Fatalf("defaults clobbered: %+v", cfg.Suite)
	}
	if !strings.Contains(content, "spin-suite") {
		t.Fatalf("original content not returned: %q", content)
	}
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	clearInfluxEnv(t)
	t.Setenv("WASTE_BENCH_TEST_NAME", "from-env")

	path := writeConfig(t, `
suite:
  name: ${WASTE_BENCH_TEST_NAME}
`)

	cfg, _, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Suite.Name != "from-env" {
		t.Fatalf("got name %q", cfg.Suite.Name)
	}
}

func TestLoadConfig_DatabaseFromEnvironment(t *testing.T) {
	t.Setenv("INFLUXDB_HOST", "http://localhost:8086")
	t.Setenv("INFLUXDB_TOKEN", "secret")
	t.Setenv("INFLUXDB_ORG", "lab")
	t.Setenv("INFLUXDB_BUCKET", "perf")

	cfg, _, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db := cfg.Suite.Data.DB
	if db == nil {
		t.Fatalf("expected database config from environment")
	}
	if db.Host != "http://localhost:8086" || db.Token != "secret" || db.Org != "lab" || db.Bucket != "perf" {
		t.Fatalf("unexpected database config: %+v", db)
	}
}

func TestLoadConfig_RejectsBadOptLevel(t *testing.T) {
	clearInfluxEnv(t)

	path := writeConfig(t, `
suite:
  compiler:
    opt_level: 5
`)

	if _, _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for opt_level 5")
	}
}

func TestLoadConfig_RejectsIncompleteDatabase(t *testing.T) {
	clearInfluxEnv(t)

	path := writeConfig(t, `
suite:
  data:
    db:
      host: http://localhost:8086
`)

	_, _, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "incomplete database configuration") {
		t.Fatalf("expected incomplete database error, got %v", err)
	}
}

func TestLoadConfig_RejectsNonPositiveRuns(t *testing.T) {
	clearInfluxEnv(t)

	path := writeConfig(t, `
suite:
  perf:
    runs: -1
`)

	if _, _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for negative runs")
	}
}
