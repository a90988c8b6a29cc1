package system

import (
	"fmt"
	"time"
)

// phaseCount bounds the Phase values a Runner accepts.
const phaseCount = int(PhaseCleanup) + 1

// Runner drives one level tick: it updates every registered system, phase by
// phase, and systems sharing a phase in registration order.
//
// The ordering is what the level plans rely on. Events emitted last tick are
// delivered before any plan steps, every plan steps before spawners and
// movement consume the components plans attached, and entities queued for
// destruction disappear only after the deaths of this tick were counted.
type Runner struct {
	phases [phaseCount][]System
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to its phase. A system reporting an unknown phase is a
// wiring bug and panics.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || int(p) >= phaseCount {
		panic(fmt.Sprintf("system: %T registered with phase %d", s, p))
	}
	r.phases[p] = append(r.phases[p], s)
}

// Tick runs a full tick and counts it.
func (r *Runner) Tick(dt time.Duration) {
	for _, systems := range r.phases {
		for _, s := range systems {
			s.Update(dt)
		}
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. It does not advance Ticks.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase < 0 || int(phase) >= phaseCount {
		return
	}
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

// Ticks is the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }
