package database

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"waste-bench/internal/perfstat"
)

func TestWriteSpoolArtifact_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	results := []*VariantResult{{
		Variant:         "basic",
		OptLevel:        3,
		Mode:            "counters",
		DurationSeconds: 3,
		Runs: []*perfstat.RunResult{
			{Metrics: map[string]float64{"cycles": 1000, "time_elapsed": 3.01}},
		},
	}}

	start := time.Now().Add(-5 * time.Second)
	end := time.Now()
	artifact := BuildSpoolArtifact("spin suite", "suite:\n  name: spin\n", &SessionMetadata{SuiteName: "spin suite"}, results, start, end)

	path, err := WriteSpoolArtifact(dir, artifact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("unexpected artifact path %q", path)
	}
	// Suite name is sanitized for the filename.
	if strings.Contains(path, " ") {
		t.Fatalf("artifact path must not contain spaces: %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}

	var decoded SpoolArtifact
	if err := json.NewDecoder(gz).Decode(&decoded); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}

	if decoded.Version != 1 {
		t.Fatalf("got version %d", decoded.Version)
	}
	if decoded.SuiteName != "spin suite" {
		t.Fatalf("got suite name %q", decoded.SuiteName)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Variant != "basic" {
		t.Fatalf("unexpected results: %+v", decoded.Results)
	}
	if got := decoded.Results[0].Runs[0].Metrics["cycles"]; got != 1000 {
		t.Fatalf("got cycles %v", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single artifact file, found %d entries", len(entries))
	}
}

func TestWriteSpoolArtifact_NilArtifact(t *testing.T) {
	if _, err := WriteSpoolArtifact(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for nil artifact")
	}
}
