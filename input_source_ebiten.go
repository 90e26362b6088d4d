// input_source_ebiten.go - Keyboard and gamepad input sources

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// keyboardBindings maps host keys onto pad buttons. Arrows for the
// d-pad, ZXAS for the face buttons, QE/12 for shoulders.
var keyboardBindings = map[ebiten.Key]Button{
	ebiten.KeyArrowUp:    ButtonUp,
	ebiten.KeyArrowDown:  ButtonDown,
	ebiten.KeyArrowLeft:  ButtonLeft,
	ebiten.KeyArrowRight: ButtonRight,
	ebiten.KeyZ:          ButtonCross,
	ebiten.KeyX:          ButtonCircle,
	ebiten.KeyA:          ButtonSquare,
	ebiten.KeyS:          ButtonTriangle,
	ebiten.KeyQ:          ButtonL1,
	ebiten.Key1:          ButtonL2,
	ebiten.KeyE:          ButtonR1,
	ebiten.Key2:          ButtonR2,
	ebiten.KeyEnter:      ButtonStart,
	ebiten.KeyShiftRight: ButtonSelect,
}

// keyboardSource polls the host keyboard. While the window is unfocused
// it reports nothing, so the latch releases whatever was held; keystrokes
// meant for other applications never leak into the game.
type keyboardSource struct{}

func (keyboardSource) Poll() buttonMask {
	if !ebiten.IsFocused() {
		return 0
	}
	var mask buttonMask
	for key, button := range keyboardBindings {
		if ebiten.IsKeyPressed(key) {
			mask |= 1 << button
		}
	}
	return mask
}

var standardPadBindings = map[ebiten.StandardGamepadButton]Button{
	ebiten.StandardGamepadButtonLeftTop:          ButtonUp,
	ebiten.StandardGamepadButtonLeftBottom:       ButtonDown,
	ebiten.StandardGamepadButtonLeftLeft:         ButtonLeft,
	ebiten.StandardGamepadButtonLeftRight:        ButtonRight,
	ebiten.StandardGamepadButtonRightBottom:      ButtonCross,
	ebiten.StandardGamepadButtonRightRight:       ButtonCircle,
	ebiten.StandardGamepadButtonRightLeft:        ButtonSquare,
	ebiten.StandardGamepadButtonRightTop:         ButtonTriangle,
	ebiten.StandardGamepadButtonFrontTopLeft:     ButtonL1,
	ebiten.StandardGamepadButtonFrontBottomLeft:  ButtonL2,
	ebiten.StandardGamepadButtonFrontTopRight:    ButtonR1,
	ebiten.StandardGamepadButtonFrontBottomRight: ButtonR2,
	ebiten.StandardGamepadButtonCenterRight:      ButtonStart,
	ebiten.StandardGamepadButtonCenterLeft:       ButtonSelect,
}

// gamepadSource polls every connected pad with a standard layout.
// Gamepads stay live across focus changes; a controller is assumed to
// belong to the game.
type gamepadSource struct {
	ids []ebiten.GamepadID
}

func (g *gamepadSource) Poll() buttonMask {
	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	var mask buttonMask
	for _, id := range g.ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for padButton, button := range standardPadBindings {
			if ebiten.IsStandardGamepadButtonPressed(id, padButton) {
				mask |= 1 << button
			}
		}
	}
	return mask
}
