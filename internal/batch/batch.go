// Package batch runs experiments once or as a cron-driven series.
package batch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"AMMSim/internal/model"
	"AMMSim/internal/notifier"
	"AMMSim/internal/recorder"
	"AMMSim/internal/simulation"
)

// Runner owns the cron schedule and the shared sinks of a run series.
type Runner struct {
	Cron     *cron.Cron
	Params   simulation.Params
	Recorder recorder.Recorder
	Notifier notifier.Notifier

	schedule cron.Schedule
	mu       sync.Mutex
	runs     int
	maxRuns  int
	done     chan struct{}
	doneOnce sync.Once
}

// NewRunner creates a Runner. A nil notifier disables summaries; a nil
// recorder records nothing.
func NewRunner(params simulation.Params, rec recorder.Recorder, n notifier.Notifier) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		// Runs never overlap; a firing that lands mid-run is dropped.
		Cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Params:   params,
		Recorder: rec,
		Notifier: n,
		done:     make(chan struct{}),
	}
}

// Register parses the series schedule. Run n uses seed Params.Seed+n. With
// maxRuns > 0 Done is closed after that many runs.
func (r *Runner) Register(spec string, maxRuns int) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("register run schedule: %w", err)
	}
	r.schedule = sched
	r.maxRuns = maxRuns
	return nil
}

// Start starts the cron scheduler. Every scheduled run uses ctx; cancelling
// it stops the run in progress.
func (r *Runner) Start(ctx context.Context) {
	if r.schedule != nil {
		r.Cron.Schedule(r.schedule, cron.FuncJob(func() { r.scheduledRun(ctx) }))
	}
	r.Cron.Start()
	log.Println("[INFO] batch scheduler started")
}

// Stop stops the cron scheduler and waits for a running experiment.
func (r *Runner) Stop() {
	<-r.Cron.Stop().Done()
	log.Println("[INFO] batch scheduler stopped")
}

// Done is closed once the configured number of runs has finished.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Runs returns the number of scheduled runs finished so far.
func (r *Runner) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

// RunOnce executes one experiment with the given seed, records it and sends
// the summary. The summary is returned even when the run fails.
func (r *Runner) RunOnce(ctx context.Context, seed int64) (*model.RunSummary, error) {
	params := r.Params
	params.Seed = seed

	clock, err := simulation.New(params, r.Recorder)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] run %s started: seed=%d traders=%d arbitrageurs=%d ticks=%d",
		clock.RunID(), seed, params.NumTraders, params.NumArbitrageurs, params.NumTicks)

	sum, runErr := clock.Run(ctx, params.NumTicks)
	if runErr != nil {
		log.Printf("[ERROR] run %s stopped at tick %d: %v", sum.RunID, sum.Ticks, runErr)
	} else {
		log.Printf("[INFO] run %s finished: price %.4f -> %.4f, tracking error %.4f, k drift %.2e",
			sum.RunID, sum.InitialPrice, sum.FinalPrice, sum.TrackingError, sum.KDrift())
	}
	r.trySend(ctx, notifier.FormatRunSummary(sum))
	return sum, runErr
}

func (r *Runner) scheduledRun(ctx context.Context) {
	r.mu.Lock()
	n := r.runs
	r.mu.Unlock()

	if _, err := r.RunOnce(ctx, r.Params.Seed+int64(n)); err != nil {
		log.Printf("[ERROR] scheduled run %d: %v", n, err)
	}

	r.mu.Lock()
	r.runs++
	finished := r.maxRuns > 0 && r.runs >= r.maxRuns
	r.mu.Unlock()
	if finished {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

func (r *Runner) trySend(ctx context.Context, text string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
