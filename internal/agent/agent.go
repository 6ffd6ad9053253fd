// Package agent implements the traders that act on the pool each tick.
package agent

import (
	"errors"
	"fmt"
	"math/rand"

	"AMMSim/internal/model"
	"AMMSim/internal/oracle"
	"AMMSim/internal/pool"
	"AMMSim/internal/strategy"
)

// Steppable is the per-tick contract the scheduler drives.
type Steppable interface {
	Step() error
}

// Env is what an agent reads and trades against. All agents of a run share
// one Env, including its random source.
type Env struct {
	Pool   *pool.Pool
	Oracle *oracle.Oracle
	Rand   *rand.Rand
	Policy strategy.Policy
}

// Agent is a trader whose behaviour is selected by Role.
type Agent struct {
	ID   int
	Role model.Role

	bal model.Balances
	env *Env

	executed int
	skipped  int
}

// New creates an agent with the given starting balances.
func New(id int, role model.Role, eth, dai float64, env *Env) *Agent {
	return &Agent{
		ID:   id,
		Role: role,
		bal:  model.Balances{Eth: eth, Dai: dai},
		env:  env,
	}
}

// Balances exposes the agent's holdings to the pool as a counterparty.
func (a *Agent) Balances() *model.Balances { return &a.bal }

// Step makes one trading decision. An agent that cannot fund the chosen side,
// or whose funds are too small to buy anything, skips the tick.
func (a *Agent) Step() error {
	poolPrice, err := a.env.Pool.Price()
	if err != nil {
		return fmt.Errorf("agent %d: read pool price: %w", a.ID, err)
	}

	side := strategy.Decide(a.Role, a.env.Oracle.Current(), poolPrice, a.env.Rand)
	amount := a.env.Policy.Size(side, a.bal, a.env.Rand)
	if amount <= 0 {
		a.skipped++
		return nil
	}

	_, err = a.env.Pool.Trade(a, side, amount)
	if errors.Is(err, pool.ErrInvalidAmount) {
		// Dust left after earlier trades is too small to buy anything.
		a.skipped++
		return nil
	}
	if err != nil {
		return fmt.Errorf("agent %d %s %v: %w", a.ID, side, amount, err)
	}
	a.executed++
	return nil
}

// Snapshot returns the agent's current holdings for a recorder.
func (a *Agent) Snapshot() model.AgentBalance {
	return model.AgentBalance{ID: a.ID, Role: a.Role, Eth: a.bal.Eth, Dai: a.bal.Dai}
}

// Stats returns how many trades were executed and skipped so far.
func (a *Agent) Stats() (executed, skipped int) {
	return a.executed, a.skipped
}
