// launcher_tui.go - Terminal ROM picker

/*
Minimal full-screen terminal launcher: arrow keys (or j/k) move, enter
launches, q quits. The terminal is put into raw mode for the duration and
always restored, including on the error paths.
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

const tuiWindowSize = 20

// RunTUILauncher lets the user pick a ROM in the terminal. Returns nil
// without error if the user quit.
func RunTUILauncher(entries []ROMEntry) (*ROMEntry, error) {
	if len(entries) == 0 {
		return nil, errors.New("no supported ROMs found; check -dir")
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal; use -gui or pass a ROM path")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Print("\x1b[2J\x1b[H")
	}()

	selected := 0
	buf := make([]byte, 3)
	for {
		drawTUIList(entries, selected)
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, err
		}
		switch {
		case n == 1 && (buf[0] == 'q' || buf[0] == 3): // q or ctrl-C
			return nil, nil
		case n == 1 && (buf[0] == '\r' || buf[0] == '\n'):
			entry := entries[selected]
			return &entry, nil
		case n == 1 && buf[0] == 'k':
			selected = wrapIndex(selected-1, len(entries))
		case n == 1 && buf[0] == 'j':
			selected = wrapIndex(selected+1, len(entries))
		case n == 3 && buf[0] == 0x1b && buf[1] == '[':
			switch buf[2] {
			case 'A':
				selected = wrapIndex(selected-1, len(entries))
			case 'B':
				selected = wrapIndex(selected+1, len(entries))
			}
		}
	}
}

func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

// tuiWindow returns the [start,end) slice of the list to show so the
// selection stays roughly centered on long lists.
func tuiWindow(selected, total int) (int, int) {
	if total <= tuiWindowSize {
		return 0, total
	}
	start := selected - tuiWindowSize/2
	if start < 0 {
		start = 0
	}
	if start > total-tuiWindowSize {
		start = total - tuiWindowSize
	}
	return start, start + tuiWindowSize
}

func drawTUIList(entries []ROMEntry, selected int) {
	fmt.Print("\x1b[2J\x1b[H")
	fmt.Printf("arcadia - %d titles  (enter: play, q: quit)\r\n\r\n", len(entries))
	start, end := tuiWindow(selected, len(entries))
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%-40.40s %s", entries[i].Name, entries[i].System)
		if i == selected {
			fmt.Printf("\x1b[7m> %s\x1b[0m\r\n", line)
		} else {
			fmt.Printf("  %s\r\n", line)
		}
	}
}
