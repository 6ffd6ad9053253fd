package recorder

import (
	"errors"

	"AMMSim/internal/model"
)

// Recorder is the metrics sink. The simulation calls Record once per tick
// and RecordRun once when a run ends; storage and rendering are up to the
// implementation.
type Recorder interface {
	Record(snap *model.Snapshot) error
	RecordRun(sum *model.RunSummary) error
	Close() error
}

// Multi fans every call out to all recorders and joins their errors.
type Multi []Recorder

func (m Multi) Record(snap *model.Snapshot) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordRun(sum *model.RunSummary) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(sum); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
