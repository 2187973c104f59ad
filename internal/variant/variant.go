package variant

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Variant is one busy-loop implementation, a package main directory under
// the variants root.
type Variant struct {
	Name     string
	Dir      string
	MainFile string
}

// Discover enumerates the variant directories under root in stable
// name-sorted order. A directory counts as a variant if it contains a
// main.go.
func Discover(root string) ([]Variant, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read variants directory %s: %w", root, err)
	}

	var variants []Variant
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		mainFile := filepath.Join(root, entry.Name(), "main.go")
		if _, err := os.Stat(mainFile); err != nil {
			continue
		}
		variants = append(variants, Variant{
			Name:     entry.Name(),
			Dir:      filepath.Join(root, entry.Name()),
			MainFile: mainFile,
		})
	}

	sort.Slice(variants, func(i, j int) bool {
		return variants[i].Name < variants[j].Name
	})

	if len(variants) == 0 {
		return nil, fmt.Errorf("no variants found in %s", root)
	}

	return variants, nil
}

// Lookup resolves a variant by name before any subprocess is spawned.
func Lookup(root, name string) (Variant, error) {
	variants, err := Discover(root)
	if err != nil {
		return Variant{}, err
	}

	names := make([]string, 0, len(variants))
	for _, v := range variants {
		if v.Name == name {
			return v, nil
		}
		names = append(names, v.Name)
	}

	return Variant{}, fmt.Errorf("unknown variant %q (available: %s)", name, strings.Join(names, ", "))
}

// Source returns the variant's source text.
func (v Variant) Source() (string, error) {
	data, err := os.ReadFile(v.MainFile)
	if err != nil {
		return "", fmt.Errorf("failed to read variant source: %w", err)
	}
	return string(data), nil
}
