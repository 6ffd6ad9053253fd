package recorder

import (
	"sync"

	"AMMSim/internal/model"
)

// MemoryRecorder keeps every snapshot in memory so the driver can hand the
// full series to analysis or plotting after the run.
type MemoryRecorder struct {
	mu    sync.Mutex
	snaps []model.Snapshot
	runs  []model.RunSummary
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{} }

func (m *MemoryRecorder) Record(snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, *snap)
	return nil
}

func (m *MemoryRecorder) RecordRun(sum *model.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *sum)
	return nil
}

// Snapshots returns a copy of the recorded series.
func (m *MemoryRecorder) Snapshots() []model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Snapshot, len(m.snaps))
	copy(out, m.snaps)
	return out
}

// Runs returns a copy of the recorded run summaries.
func (m *MemoryRecorder) Runs() []model.RunSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.RunSummary, len(m.runs))
	copy(out, m.runs)
	return out
}

func (m *MemoryRecorder) Close() error { return nil }
