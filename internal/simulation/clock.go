// Package simulation owns one run: the pool, the oracle, the agents and the
// tick loop that drives them.
package simulation

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"AMMSim/internal/agent"
	"AMMSim/internal/calculator"
	"AMMSim/internal/model"
	"AMMSim/internal/oracle"
	"AMMSim/internal/pool"
	"AMMSim/internal/recorder"
	"AMMSim/internal/scheduler"
)

// smoothingWindow is how many closing ticks SmoothedGap averages.
const smoothingWindow = 10

// Clock is the root of a run. Each RunStep records a snapshot, fixes the
// oracle price for the tick, lets every agent act once and then advances.
type Clock struct {
	runID  string
	params Params

	pool   *pool.Pool
	oracle *oracle.Oracle
	agents []*agent.Agent
	sched  *scheduler.Scheduler
	sink   recorder.Recorder

	tick     int
	initialK float64
	// prices keeps pool/external pairs only, for the run summary.
	prices []model.Snapshot
}

// New builds a run from params. A nil sink records nothing.
func New(params Params, sink recorder.Recorder) (*Clock, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if sink == nil {
		sink = recorder.NewNoopRecorder()
	}

	p, err := pool.New(params.PoolInitialDai, params.PoolInitialEth)
	if err != nil {
		return nil, err
	}
	base, err := p.Price()
	if err != nil {
		return nil, err
	}

	opts := []oracle.Option{oracle.WithWave(params.Oracle.Frequency, params.Oracle.Amplitude)}
	if params.Oracle.NoiseAmplitude > 0 {
		opts = append(opts, oracle.WithNoise(params.Seed, params.Oracle.NoiseAmplitude, params.Oracle.NoiseScale))
	}
	o, err := oracle.New(base, opts...)
	if err != nil {
		return nil, err
	}

	// One source for sizing, coin flips and activation order.
	rng := rand.New(rand.NewSource(params.Seed))
	env := &agent.Env{Pool: p, Oracle: o, Rand: rng, Policy: params.Policy}

	agents := make([]*agent.Agent, params.NumTraders)
	steppers := make([]agent.Steppable, params.NumTraders)
	for i := range agents {
		role := model.RoleRandomTrader
		if i < params.NumArbitrageurs {
			role = model.RoleArbitrageur
		}
		agents[i] = agent.New(i, role, params.TraderInitialEth, params.TraderInitialDai, env)
		steppers[i] = agents[i]
	}

	return &Clock{
		runID:    uuid.NewString(),
		params:   params,
		pool:     p,
		oracle:   o,
		agents:   agents,
		sched:    scheduler.NewScheduler(rng, steppers...),
		sink:     sink,
		initialK: p.K(),
	}, nil
}

// RunStep advances the simulation by one tick. A pool error is fatal to the
// run; a recorder error is logged and the run continues.
func (c *Clock) RunStep() error {
	price, err := c.pool.Price()
	if err != nil {
		return fmt.Errorf("tick %d: %w", c.tick, err)
	}
	external := c.oracle.ExternalPrice(c.tick)

	snap := c.snapshot(price, external)
	if err := c.sink.Record(snap); err != nil {
		log.Printf("[WARN] record tick %d: %v", c.tick, err)
	}
	c.prices = append(c.prices, model.Snapshot{Tick: c.tick, PoolPrice: price, ExternalPrice: external})

	c.oracle.Advance(c.tick)
	if err := c.sched.RunTick(); err != nil {
		return fmt.Errorf("tick %d: %w", c.tick, err)
	}
	c.tick++
	return nil
}

// Run calls RunStep n times, stopping early when ctx is cancelled or a step
// fails. The summary is always returned and handed to the sink.
func (c *Clock) Run(ctx context.Context, n int) (*model.RunSummary, error) {
	started := time.Now()
	initialPrice, _ := c.pool.Price()

	var runErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := c.RunStep(); err != nil {
			runErr = err
			break
		}
	}

	sum := c.summarize(started, initialPrice, runErr)
	if err := c.sink.RecordRun(sum); err != nil {
		log.Printf("[WARN] record run %s: %v", c.runID, err)
	}
	return sum, runErr
}

func (c *Clock) snapshot(price, external float64) *model.Snapshot {
	dai, eth := c.pool.Reserves()
	balances := make([]model.AgentBalance, len(c.agents))
	for i, a := range c.agents {
		balances[i] = a.Snapshot()
	}
	return &model.Snapshot{
		RunID:         c.runID,
		Tick:          c.tick,
		PoolPrice:     price,
		ExternalPrice: external,
		ReserveDai:    dai,
		ReserveEth:    eth,
		Agents:        balances,
	}
}

func (c *Clock) summarize(started time.Time, initialPrice float64, runErr error) *model.RunSummary {
	finalPrice, _ := c.pool.Price()
	sum := &model.RunSummary{
		RunID:          c.runID,
		Seed:           c.params.Seed,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		Ticks:          c.tick,
		NumTraders:     c.params.NumTraders,
		NumArbitrageur: c.params.NumArbitrageurs,
		InitialPrice:   initialPrice,
		FinalPrice:     finalPrice,
		BasePrice:      c.oracle.BasePrice(),
		InitialK:       c.initialK,
		FinalK:         c.pool.K(),
	}
	if runErr != nil {
		sum.Err = runErr.Error()
	}
	if len(c.prices) > 0 {
		sum.TrackingError, sum.MaxGap, _ = calculator.TrackingError(c.prices)
		sum.PriceHigh, sum.PriceLow, _ = calculator.PriceRange(c.prices)
		sum.PriceHigh = math.Max(sum.PriceHigh, finalPrice)
		sum.PriceLow = math.Min(sum.PriceLow, finalPrice)
		sum.SmoothedGap, _ = calculator.SmoothedGap(c.prices, min(smoothingWindow, len(c.prices)))
		sum.RangePosition, _ = calculator.RangePosition(finalPrice, sum.PriceHigh, sum.PriceLow)
	}
	for _, a := range c.agents {
		executed, skipped := a.Stats()
		sum.TradesExecuted += executed
		sum.TradesSkipped += skipped
	}
	return sum
}

// RunID identifies the run in recorded data.
func (c *Clock) RunID() string { return c.runID }

// Tick returns the number of completed steps.
func (c *Clock) Tick() int { return c.tick }

func (c *Clock) Pool() *pool.Pool { return c.pool }

func (c *Clock) Oracle() *oracle.Oracle { return c.oracle }

// Agents returns the population in id order.
func (c *Clock) Agents() []*agent.Agent { return c.agents }
