// system_detect.go - ROM file type detection by extension

package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GameSystem identifies which console a ROM belongs to.
type GameSystem int

const (
	SystemGameBoy GameSystem = iota
	SystemNES
	SystemSNES
	SystemN64
	SystemGameCube
	SystemPS1
	SystemNDS
	SystemC64
	SystemZXSpectrum
)

func (s GameSystem) String() string {
	switch s {
	case SystemGameBoy:
		return "Game Boy"
	case SystemNES:
		return "NES"
	case SystemSNES:
		return "SNES"
	case SystemN64:
		return "Nintendo 64"
	case SystemGameCube:
		return "GameCube"
	case SystemPS1:
		return "PlayStation"
	case SystemNDS:
		return "Nintendo DS"
	case SystemC64:
		return "Commodore 64"
	case SystemZXSpectrum:
		return "ZX Spectrum"
	}
	return fmt.Sprintf("system(%d)", int(s))
}

// extensionTable maps lowercase ROM extensions (without the dot) onto the
// system they belong to. "bin" is ambiguous in the wild; we follow the
// original front-end and treat it as a PS1 disc image.
var extensionTable = map[string]GameSystem{
	"gb":   SystemGameBoy,
	"gbc":  SystemGameBoy,
	"nes":  SystemNES,
	"sfc":  SystemSNES,
	"smc":  SystemSNES,
	"snes": SystemSNES,
	"n64":  SystemN64,
	"z64":  SystemN64,
	"v64":  SystemN64,
	"iso":  SystemGameCube,
	"gcm":  SystemGameCube,
	"gcz":  SystemGameCube,
	"gcn":  SystemGameCube,
	"ciso": SystemGameCube,
	"dol":  SystemGameCube,
	"rvz":  SystemGameCube,
	"cue":  SystemPS1,
	"bin":  SystemPS1,
	"exe":  SystemPS1,
	"nds":  SystemNDS,
	"prg":  SystemC64,
	"p00":  SystemC64,
	"crt":  SystemC64,
	"t64":  SystemC64,
	"tap":  SystemZXSpectrum,
	"tzx":  SystemZXSpectrum,
	"z80":  SystemZXSpectrum,
	"sna":  SystemZXSpectrum,
}

// DetectSystem maps a ROM path onto a GameSystem using its extension.
func DetectSystem(path string) (GameSystem, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%s: file has no extension", path)
	}
	system, ok := extensionTable[strings.ToLower(ext)]
	if !ok {
		return 0, fmt.Errorf("unsupported ROM extension: %s", ext)
	}
	return system, nil
}

// SupportedExtension reports whether the launcher should list a file.
func SupportedExtension(path string) bool {
	_, err := DetectSystem(path)
	return err == nil
}
