package recorder

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AMMSim/internal/model"
)

func sampleSnapshots(runID string, n int) []model.Snapshot {
	out := make([]model.Snapshot, n)
	for i := range out {
		out[i] = model.Snapshot{
			RunID:         runID,
			Tick:          i,
			PoolPrice:     100 + float64(i),
			ExternalPrice: 100,
			ReserveDai:    1_000_000,
			ReserveEth:    10_000,
			Agents: []model.AgentBalance{
				{ID: 0, Role: model.RoleArbitrageur, Eth: 1000, Dai: 10_000},
				{ID: 1, Role: model.RoleRandomTrader, Eth: 999, Dai: 10_100},
			},
		}
	}
	return out
}

func sampleSummary(runID string) *model.RunSummary {
	return &model.RunSummary{
		RunID:         runID,
		Seed:          42,
		StartedAt:     time.Unix(1_700_000_000, 0),
		FinishedAt:    time.Unix(1_700_000_010, 0),
		Ticks:         3,
		NumTraders:    2,
		InitialK:      1e10,
		FinalK:        1e10,
		TrackingError: 0.01,
		SmoothedGap:   0.004,
		RangePosition: 0.75,
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer r.Close()

	for _, s := range sampleSnapshots("run-a", 3) {
		s := s
		require.NoError(t, r.Record(&s))
	}
	require.NoError(t, r.RecordRun(sampleSummary("run-a")))
	// Re-recording a run replaces it.
	require.NoError(t, r.RecordRun(sampleSummary("run-a")))

	rows, err := r.Ticks("run-a")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Tick)
	assert.Equal(t, 102.0, rows[2].PoolPrice)

	n, err := r.AgentCount("run-a", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var closing struct {
		SmoothedGap   float64 `db:"smoothed_gap"`
		RangePosition float64 `db:"range_position"`
	}
	require.NoError(t, r.db.Get(&closing, "SELECT smoothed_gap, range_position FROM runs WHERE run_id = ?", "run-a"))
	assert.Equal(t, 0.004, closing.SmoothedGap)
	assert.Equal(t, 0.75, closing.RangePosition)

	ids, err := r.RunIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a"}, ids)
}

func TestJSONRecorder_WritesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "series.json")
	r := NewJSONRecorder(path)
	for _, s := range sampleSnapshots("run-j", 4) {
		s := s
		require.NoError(t, r.Record(&s))
	}
	require.NoError(t, r.RecordRun(sampleSummary("run-j")))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing is written before Close")

	require.NoError(t, r.Close())
	runs, snaps, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Len(t, snaps, 4)
	assert.Equal(t, "run-j", runs[0].RunID)
	assert.Equal(t, model.RoleArbitrageur, snaps[3].Agents[0].Role)
}

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder()
	for _, s := range sampleSnapshots("run-m", 5) {
		s := s
		require.NoError(t, r.Record(&s))
	}
	require.NoError(t, r.RecordRun(sampleSummary("run-m")))

	snaps := r.Snapshots()
	require.Len(t, snaps, 5)
	snaps[0].Tick = 99
	assert.Equal(t, 0, r.Snapshots()[0].Tick, "returned slice is a copy")
	assert.Len(t, r.Runs(), 1)
}

func TestPromRecorder(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "ammsim.prom")
	r := NewPromRecorder("", textfile)

	snaps := sampleSnapshots("run-p", 2)
	require.NoError(t, r.Record(&snaps[1]))
	assert.Equal(t, 101.0, testutil.ToFloat64(r.poolPrice))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tick))
	assert.Equal(t, 10_000.0, testutil.ToFloat64(r.reserve.WithLabelValues("ETH")))

	failed := sampleSummary("run-p")
	failed.Err = "boom"
	require.NoError(t, r.RecordRun(failed))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("error")))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	scraped, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(scraped), `ammsim_runs_total{outcome="error"} 1`)

	require.NoError(t, r.Close())
	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "ammsim_pool_price 101"))
}

type failing struct{ NoopRecorder }

func (failing) Record(_ *model.Snapshot) error { return errors.New("disk full") }

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	mem := NewMemoryRecorder()
	m := Multi{mem, &failing{}, NewNoopRecorder()}

	snaps := sampleSnapshots("run-x", 1)
	err := m.Record(&snaps[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, mem.Snapshots(), 1, "healthy recorders still receive the snapshot")

	assert.NoError(t, m.RecordRun(sampleSummary("run-x")))
	assert.NoError(t, m.Close())
}
