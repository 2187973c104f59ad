package database

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SpoolArtifact archives a full session on disk so results survive without
// a reachable database.
type SpoolArtifact struct {
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`

	SuiteName string    `json:"suite_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	ConfigContent string `json:"config_content,omitempty"`

	Metadata *SessionMetadata `json:"metadata"`
	Results  []*VariantResult `json:"results"`
}

func DefaultSpoolDir() string {
	if v := strings.TrimSpace(os.Getenv("WASTE_BENCH_SPOOL_DIR")); v != "" {
		return v
	}
	return "spool"
}

// WriteSpoolArtifact writes a gzip-compressed JSON artifact to disk
// atomically. It returns the final file path.
func WriteSpoolArtifact(dir string, artifact *SpoolArtifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("spool artifact is nil")
	}
	if dir == "" {
		dir = DefaultSpoolDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf(
		"session_%s_%s.json.gz",
		sanitizeName(artifact.SuiteName),
		artifact.CreatedAt.UTC().Format("20060102T150405Z"),
	)
	finalPath := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp.*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", err
	}
	ok = true
	return finalPath, nil
}

// BuildSpoolArtifact constructs a spool artifact from the in-memory
// session results.
func BuildSpoolArtifact(suiteName, configContent string, metadata *SessionMetadata, results []*VariantResult, startTime, endTime time.Time) *SpoolArtifact {
	return &SpoolArtifact{
		Version:       1,
		CreatedAt:     time.Now(),
		SuiteName:     suiteName,
		StartTime:     startTime,
		EndTime:       endTime,
		ConfigContent: configContent,
		Metadata:      metadata,
		Results:       results,
	}
}

func sanitizeName(name string) string {
	if name == "" {
		return "suite"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
