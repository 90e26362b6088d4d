// frame_pacer.go - Native refresh rate frame pacing

package main

import "time"

// spinSlack is how much of the frame budget is burned spinning instead
// of sleeping. The scheduler routinely overshoots sleeps by a coarse
// tick, so the last stretch before the deadline is spun to hit it
// within microseconds.
const spinSlack = time.Millisecond

// framePacer holds frame completion to a console's native field rate.
// Pacing is deadline-based, not delay-based: each frame's deadline is the
// previous deadline plus the period, so per-frame jitter does not
// accumulate into drift.
type framePacer struct {
	period   time.Duration
	deadline time.Time

	// test seams
	now   func() time.Time
	sleep func(time.Duration)
}

// newFramePacer paces at hz frames per second.
func newFramePacer(hz float64) *framePacer {
	return &framePacer{
		period: time.Duration(float64(time.Second) / hz),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Wait blocks until this frame's deadline, then arms the next one. If
// emulation fell behind by more than a full period the schedule is reset
// from now rather than fast-forwarding through the backlog.
func (p *framePacer) Wait() {
	now := p.now()
	if p.deadline.IsZero() {
		p.deadline = now.Add(p.period)
		return
	}

	for {
		remaining := p.deadline.Sub(now)
		if remaining <= 0 {
			break
		}
		if remaining > spinSlack {
			p.sleep(remaining - spinSlack)
		} else {
			p.sleep(0) // yield while spinning out the last stretch
		}
		now = p.now()
	}

	p.deadline = p.deadline.Add(p.period)
	if now.After(p.deadline) {
		p.deadline = now.Add(p.period)
	}
}
