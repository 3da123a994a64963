package app

import (
	"sync"

	"github.com/bft-labs/herald/internal/domain"
	"github.com/bft-labs/herald/internal/ports"
)

// Phase is the stage a Coordinator run is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreflight
	PhaseDispatching
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePreflight:
		return "Preflight"
	case PhaseDispatching:
		return "Dispatching"
	default:
		return "Unknown"
	}
}

// phases guards the run state machine: Idle -> [Preflight ->] Dispatching -> Idle.
type phases struct {
	mu     sync.RWMutex
	phase  Phase
	logger ports.Logger
}

func newPhases(logger ports.Logger) *phases {
	return &phases{phase: PhaseIdle, logger: logger}
}

func (p *phases) current() Phase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.phase
}

// transitionTo moves to next, or returns ErrRunInProgress when the move
// is not allowed from the current phase.
func (p *phases) transitionTo(next Phase) error {
	p.mu.Lock()
	prev := p.phase

	ok := false
	switch prev {
	case PhaseIdle:
		ok = next == PhasePreflight || next == PhaseDispatching
	case PhasePreflight:
		ok = next == PhaseDispatching || next == PhaseIdle
	case PhaseDispatching:
		ok = next == PhaseIdle
	}
	if !ok {
		p.mu.Unlock()
		return domain.ErrRunInProgress
	}

	p.phase = next
	p.mu.Unlock()

	p.logger.Debug("phase transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
	)
	return nil
}
