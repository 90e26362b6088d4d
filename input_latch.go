// input_latch.go - Button state latching and edge forwarding

/*
Input flows from any number of sources (keyboard, gamepads, automation
scripts) into one latch. Every frame the latch ORs all sources into a
combined mask and forwards only the edges to the core: a button press is
delivered once when it happens, not repeated for every frame it is held.

Focus loss is handled at the source level: a keyboard source reports an
empty mask while its window is unfocused, which the latch turns into
release edges for whatever was held. Keys can never stick across an
alt-tab.
*/

package main

// buttonMask is one bit per Button.
type buttonMask uint32

func maskOf(buttons ...Button) buttonMask {
	var m buttonMask
	for _, b := range buttons {
		m |= 1 << b
	}
	return m
}

func (m buttonMask) has(b Button) bool { return m&(1<<b) != 0 }

// InputSource reports the buttons it currently holds down.
type InputSource interface {
	Poll() buttonMask
}

// InputLatch combines sources and forwards edge transitions to a core.
type InputLatch struct {
	sources []InputSource
	prev    buttonMask
}

func NewInputLatch(sources ...InputSource) *InputLatch {
	return &InputLatch{sources: sources}
}

func (l *InputLatch) AddSource(s InputSource) {
	l.sources = append(l.sources, s)
}

// Forward polls all sources and delivers every changed button to the
// core. A button is pressed if any source holds it.
func (l *InputLatch) Forward(core EmulationCore) {
	var cur buttonMask
	for _, s := range l.sources {
		cur |= s.Poll()
	}
	changed := cur ^ l.prev
	if changed == 0 {
		l.prev = cur
		return
	}
	for b := Button(0); b < ButtonCount; b++ {
		if changed.has(b) {
			core.SetButtonState(b, cur.has(b))
		}
	}
	l.prev = cur
}
