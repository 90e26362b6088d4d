// launcher_scan_test.go - Tests for ROM directory scanning

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanROMDirectory_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "zelda.n64"))
	touch(t, filepath.Join(dir, "alundra.cue"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "psx", "ridge racer.bin"))

	entries, err := ScanROMDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("found %d entries, want 3: %+v", len(entries), entries)
	}

	wantNames := []string{"alundra", "ridge racer", "zelda"}
	for i, want := range wantNames {
		if entries[i].Name != want {
			t.Errorf("entry %d: name %q, want %q", i, entries[i].Name, want)
		}
	}
	if entries[0].System != SystemPS1 {
		t.Errorf("alundra detected as %v, want PlayStation", entries[0].System)
	}
	if entries[2].System != SystemN64 {
		t.Errorf("zelda detected as %v, want Nintendo 64", entries[2].System)
	}
}

func TestScanROMDirectory_EmptyDirectoryIsNotAnError(t *testing.T) {
	entries, err := ScanROMDirectory(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("empty directory yielded %d entries", len(entries))
	}
}

func TestScanROMDirectory_MissingDirectoryErrors(t *testing.T) {
	if _, err := ScanROMDirectory(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("missing directory scanned without error")
	}
}
