package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AMMSim/internal/recorder"
	"AMMSim/internal/simulation"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return c.err
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func smallParams() simulation.Params {
	p := simulation.DefaultParams()
	p.NumTraders = 10
	p.NumArbitrageurs = 2
	p.NumTicks = 20
	p.Seed = 100
	return p
}

func TestRunOnce_RecordsAndNotifies(t *testing.T) {
	mem := recorder.NewMemoryRecorder()
	n := &captureNotifier{}
	r := NewRunner(smallParams(), mem, n)

	sum, err := r.RunOnce(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Seed)
	assert.Equal(t, 20, sum.Ticks)
	assert.Len(t, mem.Snapshots(), 20)
	require.Len(t, mem.Runs(), 1)
	require.Equal(t, 1, n.count())
	assert.Contains(t, n.msgs[0], sum.RunID)
}

func TestRunOnce_NotifierFailureIsNotFatal(t *testing.T) {
	n := &captureNotifier{err: errors.New("offline")}
	r := NewRunner(smallParams(), nil, n)
	_, err := r.RunOnce(context.Background(), 1)
	assert.NoError(t, err)
}

func TestRunOnce_InvalidParams(t *testing.T) {
	p := smallParams()
	p.NumArbitrageurs = 50
	r := NewRunner(p, nil, nil)
	sum, err := r.RunOnce(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, sum)
}

func TestScheduledRun_AdvancesSeed(t *testing.T) {
	mem := recorder.NewMemoryRecorder()
	r := NewRunner(smallParams(), mem, nil)
	r.maxRuns = 3

	for i := 0; i < 3; i++ {
		r.scheduledRun(context.Background())
	}
	runs := mem.Runs()
	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, int64(100+i), run.Seed)
	}
	assert.Equal(t, 3, r.Runs())
	select {
	case <-r.Done():
	default:
		t.Fatal("done should be closed after max runs")
	}
}

func TestRegister_FiresOnSchedule(t *testing.T) {
	mem := recorder.NewMemoryRecorder()
	r := NewRunner(smallParams(), mem, nil)
	require.NoError(t, r.Register("@every 1s", 1))
	r.Start(context.Background())
	defer r.Stop()

	select {
	case <-r.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("scheduled run did not finish")
	}
	assert.GreaterOrEqual(t, len(mem.Runs()), 1)
}

func TestStart_CancelledContextStopsRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mem := recorder.NewMemoryRecorder()
	r := NewRunner(smallParams(), mem, nil)
	require.NoError(t, r.Register("@every 1s", 1))
	r.Start(ctx)
	defer r.Stop()

	select {
	case <-r.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("scheduled run did not finish")
	}
	runs := mem.Runs()
	require.NotEmpty(t, runs)
	assert.Equal(t, 0, runs[0].Ticks)
	assert.Contains(t, runs[0].Err, "context canceled")
}

func TestRegister_BadSpec(t *testing.T) {
	r := NewRunner(smallParams(), nil, nil)
	assert.Error(t, r.Register("not a schedule", 0))
}
