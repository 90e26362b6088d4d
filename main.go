// main.go - Entry point for the arcadia front-end

package main

import (
	"flag"
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `arcadia - multi-console emulator front-end

usage:
  arcadia [options]            browse the ROM directory
  arcadia [options] <rom>      run one ROM directly

options:
`)
	flag.PrintDefaults()
}

func main() {
	cfg := &Config{AudioBackend: AUDIO_BACKEND_OTO}
	flag.StringVar(&cfg.Dir, "dir", ".", "ROM directory to browse")
	flag.BoolVar(&cfg.GUI, "gui", false, "use the windowed launcher instead of the terminal one")
	flag.IntVar(&cfg.Scale, "scale", 2, "initial window scale factor")
	flag.BoolVar(&cfg.LimitFPS, "limit-fps", true, "pace emulation at the console's native rate")
	flag.StringVar(&cfg.BIOS, "bios", "", "PlayStation BIOS image (default: search ROM directory)")
	flag.BoolVar(&cfg.FullVRAM, "full-vram", false, "show the whole PlayStation VRAM instead of the display window")
	flag.IntVar(&cfg.Frames, "frames", 0, "exit after this many frames (0 = run until closed)")
	flag.StringVar(&cfg.Script, "script", "", "Lua automation script")
	flag.Usage = usage
	flag.Parse()

	if err := run(cfg, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "arcadia: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected at most one ROM path, got %d", len(args))
	}
	if len(args) == 1 {
		return runROM(args[0], cfg)
	}

	entries, err := ScanROMDirectory(cfg.Dir)
	if err != nil {
		return err
	}

	if cfg.GUI {
		// The GUI launcher hosts framebuffer cores itself; only a
		// PlayStation pick comes back, to run on the Vulkan path.
		pick, err := RunGUILauncher(entries, cfg)
		if err != nil || pick == nil {
			return err
		}
		return runROM(pick.Path, cfg)
	}

	pick, err := RunTUILauncher(entries)
	if err != nil || pick == nil {
		return err
	}
	return runROM(pick.Path, cfg)
}
