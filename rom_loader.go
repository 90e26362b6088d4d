// rom_loader.go - ROM and BIOS file loading

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// ps1BIOSNames are the conventional SCPH BIOS image names searched when no
// explicit -bios path is given.
var ps1BIOSNames = []string{
	"scph1001.bin",
	"scph5501.bin",
	"scph5502.bin",
	"scph7001.bin",
	"bios.bin",
}

// LoadROM reads the ROM file and detects its system in one step.
func LoadROM(path string) ([]byte, GameSystem, error) {
	system, err := DetectSystem(path)
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read ROM file: %w", err)
	}
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%s: ROM file is empty", path)
	}
	return data, system, nil
}

// LoadPS1BIOS resolves and reads the PlayStation BIOS image. An explicit
// override path wins; otherwise the ROM's directory and the current
// directory are searched for conventional names.
func LoadPS1BIOS(override, romPath string) ([]byte, error) {
	if override != "" {
		data, err := os.ReadFile(override)
		if err != nil {
			return nil, fmt.Errorf("failed to read BIOS file: %w", err)
		}
		return data, nil
	}

	searchDirs := []string{filepath.Dir(romPath), "."}
	for _, dir := range searchDirs {
		for _, name := range ps1BIOSNames {
			candidate := filepath.Join(dir, name)
			data, err := os.ReadFile(candidate)
			if err == nil && len(data) > 0 {
				return data, nil
			}
		}
	}
	return nil, fmt.Errorf("no PlayStation BIOS found (searched %v for %v); use -bios to point at one",
		searchDirs, ps1BIOSNames)
}
