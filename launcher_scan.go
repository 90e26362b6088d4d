// launcher_scan.go - ROM directory scanning

package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ROMEntry is one launchable file found in the ROM directory.
type ROMEntry struct {
	Path   string
	Name   string // base name without extension, shown in the launcher
	System GameSystem
}

// ScanROMDirectory walks dir recursively and returns every file with a
// supported extension, sorted by display name. An empty result is not an
// error; the launcher reports it.
func ScanROMDirectory(dir string) ([]ROMEntry, error) {
	var entries []ROMEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !SupportedExtension(path) {
			return nil
		}
		system, err := DetectSystem(path)
		if err != nil {
			return nil
		}
		base := filepath.Base(path)
		entries = append(entries, ROMEntry{
			Path:   path,
			Name:   strings.TrimSuffix(base, filepath.Ext(base)),
			System: system,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ROM scan: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
