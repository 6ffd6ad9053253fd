// Package scheduler activates every agent once per tick in a fresh random order.
package scheduler

import (
	"fmt"
	"math/rand"

	"AMMSim/internal/agent"
)

// State is the scheduler's position relative to a tick.
type State uint8

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	default:
		return "UNKNOWN"
	}
}

// Scheduler owns the agent population in insertion order.
type Scheduler struct {
	agents []agent.Steppable
	rng    *rand.Rand

	state State
	order []int
	steps int
}

// NewScheduler creates a scheduler over agents. rng must be the run's shared
// source so a fixed seed reproduces the same activation order.
func NewScheduler(rng *rand.Rand, agents ...agent.Steppable) *Scheduler {
	return &Scheduler{
		agents: agents,
		rng:    rng,
		state:  Idle,
	}
}

// RunTick draws a uniformly random permutation and steps every agent in that
// order. The first failing agent aborts the tick; the scheduler is Idle again
// afterwards either way.
func (s *Scheduler) RunTick() error {
	if s.state != Idle {
		return fmt.Errorf("run tick %d: scheduler is %s", s.steps, s.state)
	}
	s.order = s.rng.Perm(len(s.agents))
	s.state = Running
	defer func() { s.state = Idle }()

	for pos, idx := range s.order {
		if err := s.agents[idx].Step(); err != nil {
			return fmt.Errorf("tick %d position %d (agent index %d): %w", s.steps, pos, idx, err)
		}
	}
	s.steps++
	return nil
}

// State reports whether a tick is in progress.
func (s *Scheduler) State() State { return s.state }

// LastOrder returns the agent indices in the order of the latest tick.
func (s *Scheduler) LastOrder() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Steps returns the number of completed ticks.
func (s *Scheduler) Steps() int { return s.steps }

// Len returns the number of scheduled agents.
func (s *Scheduler) Len() int { return len(s.agents) }
