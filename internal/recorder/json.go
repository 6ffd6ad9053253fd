package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"AMMSim/internal/model"
)

// JSONRecorder buffers the series in memory and writes it to a single JSON
// file on Close, for loading into a plotting tool.
type JSONRecorder struct {
	mu       sync.Mutex
	filePath string
	doc      jsonDocument
}

type jsonDocument struct {
	Runs      []model.RunSummary `json:"runs"`
	Snapshots []model.Snapshot   `json:"snapshots"`
}

func NewJSONRecorder(filePath string) *JSONRecorder {
	return &JSONRecorder{filePath: filePath}
}

func (j *JSONRecorder) Record(snap *model.Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc.Snapshots = append(j.doc.Snapshots, *snap)
	return nil
}

func (j *JSONRecorder) RecordRun(sum *model.RunSummary) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc.Runs = append(j.doc.Runs, *sum)
	return nil
}

// Close writes the buffered document.
func (j *JSONRecorder) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.MarshalIndent(j.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	if dir := filepath.Dir(j.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(j.filePath, data, 0644)
}

// LoadJSON reads a document written by JSONRecorder.
func LoadJSON(filePath string) ([]model.RunSummary, []model.Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	return doc.Runs, doc.Snapshots, nil
}
