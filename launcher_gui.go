// launcher_gui.go - Windowed ROM picker

/*
GUI flavor of the launcher. Ebiten allows exactly one RunGame per
process, so the launcher does not hand off to a second game loop:
choosing a framebuffer-core title swaps the running session in behind the
menu, and closing the game drops back to it. PlayStation titles present
through their own Vulkan window, so picking one terminates the ebiten
loop and returns the entry to the caller instead.

Ctrl+C copies the selected ROM path to the clipboard, handy for building
scripted runs.
*/

package main

import (
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	guiWidth      = 640
	guiHeight     = 480
	guiRowHeight  = 16
	guiListTop    = 48
	guiWindowRows = (guiHeight - guiListTop - guiRowHeight) / guiRowHeight
)

type launcherGUI struct {
	cfg     *Config
	entries []ROMEntry

	selected  int
	status    string
	clipboard bool

	session *ebitenSession // non-nil while a framebuffer game runs
	ps1Pick *ROMEntry      // set when a PlayStation title is chosen
}

// RunGUILauncher shows the picker and hosts framebuffer-core sessions
// in-process. If the user picks a PlayStation title it is returned for
// the caller to run on the Vulkan path.
func RunGUILauncher(entries []ROMEntry, cfg *Config) (*ROMEntry, error) {
	gui := &launcherGUI{cfg: cfg, entries: entries}
	if err := clipboard.Init(); err == nil {
		gui.clipboard = true
	}

	ebiten.SetWindowSize(guiWidth, guiHeight)
	ebiten.SetWindowTitle("arcadia")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(gui); err != nil && err != ebiten.Termination {
		return nil, err
	}
	return gui.ps1Pick, nil
}

func (g *launcherGUI) Update() error {
	if g.session != nil {
		err := g.session.Update()
		if err == nil {
			return nil
		}
		g.session.Close()
		g.session = nil
		if err != ebiten.Termination {
			g.status = err.Error()
		}
		return nil
	}

	if len(g.entries) > 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
			g.selected = wrapIndex(g.selected-1, len(g.entries))
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
			g.selected = wrapIndex(g.selected+1, len(g.entries))
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyC) && ebiten.IsKeyPressed(ebiten.KeyControl) {
			g.copySelection()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			return g.launchSelection()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *launcherGUI) copySelection() {
	if !g.clipboard {
		g.status = "clipboard unavailable"
		return
	}
	path := g.entries[g.selected].Path
	clipboard.Write(clipboard.FmtText, []byte(path))
	g.status = "copied: " + path
}

func (g *launcherGUI) launchSelection() error {
	entry := g.entries[g.selected]
	if entry.System == SystemPS1 {
		g.ps1Pick = &entry
		return ebiten.Termination
	}

	core, err := buildCore(entry.Path, g.cfg)
	if err != nil {
		g.status = err.Error()
		fmt.Fprintf(os.Stderr, "launcher: %v\n", err)
		return nil
	}
	fbCore, ok := core.(FramebufferCore)
	if !ok {
		g.status = entry.System.String() + " core does not expose a framebuffer"
		return nil
	}
	session, err := newEbitenSession(fbCore, g.cfg, nil)
	if err != nil {
		g.status = err.Error()
		return nil
	}
	g.session = session
	g.status = ""
	return nil
}

func (g *launcherGUI) Draw(screen *ebiten.Image) {
	if g.session != nil {
		g.session.Draw(screen)
		return
	}

	face := basicfont.Face7x13
	white := color.White
	dim := color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xFF}

	text.Draw(screen, "arcadia", face, 16, 24, white)
	text.Draw(screen, "enter: play   ctrl+c: copy path   esc: quit", face, 16, 40, dim)

	if len(g.entries) == 0 {
		text.Draw(screen, "no supported ROMs found; check -dir", face, 16, guiListTop+guiRowHeight, white)
		return
	}

	start, end := guiWindow(g.selected, len(g.entries))
	y := guiListTop + guiRowHeight
	for i := start; i < end; i++ {
		line := g.entries[i].Name + "  [" + g.entries[i].System.String() + "]"
		if i == g.selected {
			text.Draw(screen, "> "+line, face, 16, y, white)
		} else {
			text.Draw(screen, "  "+line, face, 16, y, dim)
		}
		y += guiRowHeight
	}
	if g.status != "" {
		text.Draw(screen, g.status, face, 16, guiHeight-8, white)
	}
}

func guiWindow(selected, total int) (int, int) {
	if total <= guiWindowRows {
		return 0, total
	}
	start := selected - guiWindowRows/2
	if start < 0 {
		start = 0
	}
	if start > total-guiWindowRows {
		start = total - guiWindowRows
	}
	return start, start + guiWindowRows
}

func (g *launcherGUI) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.session != nil {
		return g.session.Layout(outsideWidth, outsideHeight)
	}
	return guiWidth, guiHeight
}
