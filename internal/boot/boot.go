// Package boot sequences device start-up. A failed fatal step leaves the
// machine in FatalHalt, which has no way out short of a restart.
package boot

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/i474232898/weather-clock/internal/common"
)

// Phase is the boot state.
type Phase string

const (
	PhaseBooting   Phase = "booting"
	PhaseReady     Phase = "ready"
	PhaseFatalHalt Phase = "fatal_halt"
)

// Step is one named boot action. Optional steps log their failure and the
// sequence continues.
type Step struct {
	Name     string
	Optional bool
	Run      func(ctx context.Context) error
}

// Status describes the machine for the status API.
type Status struct {
	Phase  Phase       `json:"phase"`
	Step   string      `json:"step,omitempty"`
	Kind   common.Kind `json:"kind,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Machine runs the boot sequence once.
type Machine struct {
	mu     sync.RWMutex
	status Status
}

func NewMachine() *Machine {
	return &Machine{status: Status{Phase: PhaseBooting}}
}

// Status returns the current boot status.
func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Run executes steps in order. The first failing required step moves the
// machine to FatalHalt and its error is returned; otherwise the machine
// becomes Ready. Run may only be called while Booting.
func (m *Machine) Run(ctx context.Context, steps ...Step) error {
	if phase := m.Status().Phase; phase != PhaseBooting {
		return fmt.Errorf("boot: cannot run from phase %s", phase)
	}

	for _, s := range steps {
		m.setStep(s.Name)
		log.Printf("INFO: boot: %s", s.Name)

		err := s.Run(ctx)
		if err == nil {
			continue
		}
		if s.Optional {
			log.Printf("boot: optional step %s failed: %v", s.Name, err)
			continue
		}

		m.mu.Lock()
		m.status = Status{
			Phase:  PhaseFatalHalt,
			Step:   s.Name,
			Kind:   common.KindOf(err),
			Reason: err.Error(),
		}
		m.mu.Unlock()
		log.Printf("ERROR: boot: %s failed: %v", s.Name, err)
		return fmt.Errorf("boot step %s: %w", s.Name, err)
	}

	m.mu.Lock()
	m.status = Status{Phase: PhaseReady}
	m.mu.Unlock()
	return nil
}

func (m *Machine) setStep(name string) {
	m.mu.Lock()
	m.status.Step = name
	m.mu.Unlock()
}
