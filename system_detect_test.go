// system_detect_test.go - Tests for ROM detection and BIOS resolution

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectSystem_KnownExtensions(t *testing.T) {
	cases := []struct {
		path string
		want GameSystem
	}{
		{"games/tetris.gb", SystemGameBoy},
		{"Mario.NES", SystemNES},
		{"star fox.sfc", SystemSNES},
		{"goldeneye.z64", SystemN64},
		{"melee.iso", SystemGameCube},
		{"tekken 3.cue", SystemPS1},
		{"vagrant story.bin", SystemPS1},
		{"castlevania.nds", SystemNDS},
		{"turrican.prg", SystemC64},
		{"manic miner.tap", SystemZXSpectrum},
	}
	for _, c := range cases {
		got, err := DetectSystem(c.path)
		if err != nil {
			t.Errorf("DetectSystem(%q): %v", c.path, err)
			continue
		}
		if got != c.want {
			t.Errorf("DetectSystem(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestDetectSystem_Unsupported(t *testing.T) {
	for _, path := range []string{"readme.txt", "noextension", "archive.zip"} {
		if _, err := DetectSystem(path); err == nil {
			t.Errorf("DetectSystem(%q) accepted an unsupported file", path)
		}
	}
}

func TestLoadROM_RejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gb")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadROM(path); err == nil {
		t.Error("empty ROM file loaded without error")
	}
}

func TestLoadPS1BIOS_SearchesROMDirectory(t *testing.T) {
	dir := t.TempDir()
	biosData := []byte{0xDE, 0xAD}
	if err := os.WriteFile(filepath.Join(dir, "scph1001.bin"), biosData, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadPS1BIOS("", filepath.Join(dir, "game.cue"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(biosData) || got[0] != biosData[0] {
		t.Errorf("loaded wrong BIOS contents: % x", got)
	}
}

func TestLoadPS1BIOS_OverrideWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scph1001.bin"), []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	override := filepath.Join(dir, "custom.rom")
	if err := os.WriteFile(override, []byte{2}, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadPS1BIOS(override, filepath.Join(dir, "game.cue"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("override ignored; loaded % x", got)
	}
}

func TestLoadPS1BIOS_MissingEverywhere(t *testing.T) {
	if _, err := LoadPS1BIOS("", filepath.Join(t.TempDir(), "game.cue")); err == nil {
		t.Error("missing BIOS resolved without error")
	}
}
