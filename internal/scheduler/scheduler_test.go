package scheduler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AMMSim/internal/agent"
)

type probe struct {
	id    int
	log   *[]int
	sched **Scheduler
	seen  State
	err   error
}

func (p *probe) Step() error {
	*p.log = append(*p.log, p.id)
	if p.sched != nil && *p.sched != nil {
		p.seen = (*p.sched).State()
	}
	return p.err
}

func newProbes(n int, log *[]int, sched **Scheduler) []*probe {
	out := make([]*probe, n)
	for i := range out {
		out[i] = &probe{id: i, log: log, sched: sched}
	}
	return out
}

func build(seed int64, probes []*probe) *Scheduler {
	steps := make([]agent.Steppable, len(probes))
	for i, p := range probes {
		steps[i] = p
	}
	return NewScheduler(rand.New(rand.NewSource(seed)), steps...)
}

func TestRunTick_StepsEveryAgentOnceInPermutationOrder(t *testing.T) {
	var log []int
	var s *Scheduler
	probes := newProbes(20, &log, &s)
	s = build(1, probes)

	require.Equal(t, Idle, s.State())
	require.NoError(t, s.RunTick())
	assert.Equal(t, Idle, s.State())

	assert.Equal(t, s.LastOrder(), log)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, log)
	for _, p := range probes {
		assert.Equal(t, Running, p.seen, "agent %d should observe Running", p.id)
	}
	assert.Equal(t, 1, s.Steps())
}

func TestRunTick_FreshPermutationEachTick(t *testing.T) {
	var log []int
	s := build(7, newProbes(30, &log, nil))

	require.NoError(t, s.RunTick())
	first := s.LastOrder()
	require.NoError(t, s.RunTick())
	second := s.LastOrder()
	assert.NotEqual(t, first, second)
}

func TestRunTick_SameSeedSameOrder(t *testing.T) {
	var logA, logB []int
	a := build(99, newProbes(15, &logA, nil))
	b := build(99, newProbes(15, &logB, nil))
	for i := 0; i < 10; i++ {
		require.NoError(t, a.RunTick())
		require.NoError(t, b.RunTick())
	}
	assert.Equal(t, logA, logB)
}

func TestRunTick_ErrorAbortsAndReturnsToIdle(t *testing.T) {
	var log []int
	probes := newProbes(5, &log, nil)
	boom := errors.New("boom")
	probes[2].err = boom
	s := build(3, probes)

	err := s.RunTick()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, log[len(log)-1], "no agent runs after the failing one")
	assert.Equal(t, 0, s.Steps())

	probes[2].err = nil
	assert.NoError(t, s.RunTick(), "scheduler is reusable after a failed tick")
}

func TestRunTick_Empty(t *testing.T) {
	s := NewScheduler(rand.New(rand.NewSource(1)))
	assert.NoError(t, s.RunTick())
	assert.Empty(t, s.LastOrder())
}

func TestRunTick_PositionsRoughlyUniform(t *testing.T) {
	const (
		n     = 10
		ticks = 20_000
	)
	var log []int
	s := build(2024, newProbes(n, &log, nil))

	// counts[agent][position]
	var counts [n][n]int
	for i := 0; i < ticks; i++ {
		require.NoError(t, s.RunTick())
		for pos, idx := range s.LastOrder() {
			counts[idx][pos]++
		}
	}
	want := float64(ticks) / n
	for a := 0; a < n; a++ {
		for pos := 0; pos < n; pos++ {
			got := float64(counts[a][pos])
			assert.InDelta(t, want, got, want*0.15, "agent %d position %d", a, pos)
		}
	}
}
