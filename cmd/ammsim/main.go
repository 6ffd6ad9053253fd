package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AMMSim/internal/batch"
	"AMMSim/internal/config"
	"AMMSim/internal/notifier"
	"AMMSim/internal/recorder"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] AMMSim starting...")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	seed := flag.Int64("seed", 0, "override simulation.seed")
	ticks := flag.Int("ticks", -1, "override simulation.num_ticks")
	flag.Parse()

	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Simulation.Seed = *seed
		case "ticks":
			cfg.Simulation.NumTicks = *ticks
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	rec, prom := buildRecorder(cfg)
	defer func() {
		if err := rec.Close(); err != nil {
			log.Printf("[ERROR] close recorder: %v", err)
		}
	}()

	var tn notifier.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Println("[INFO] telegram summaries enabled")
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(cfg.Params(), rec, tn)

	if cfg.Schedule.Cron == "" {
		if _, err := runner.RunOnce(ctx, cfg.Simulation.Seed); err != nil {
			log.Printf("[FATAL] run failed: %v", err)
			stop()
			rec.Close()
			os.Exit(1)
		}
		log.Println("[INFO] AMMSim finished")
		return
	}

	if err := runner.Register(cfg.Schedule.Cron, cfg.Schedule.MaxRuns); err != nil {
		log.Fatalf("[FATAL] register schedule: %v", err)
	}
	if prom != nil && cfg.Recorder.PromListen != "" {
		srv := &http.Server{Addr: cfg.Recorder.PromListen, Handler: prom.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Printf("[INFO] serving metrics on %s", cfg.Recorder.PromListen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	runner.Start(ctx)
	defer runner.Stop()
	log.Printf("[INFO] AMMSim is running on %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)

	select {
	case <-ctx.Done():
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-runner.Done():
		log.Printf("[INFO] finished %d scheduled runs", runner.Runs())
	}
	log.Println("[INFO] AMMSim stopped")
}

// buildRecorder fans out to every configured sink. With none configured
// nothing is recorded. The Prometheus sink is also returned for serving.
func buildRecorder(cfg *config.Config) (recorder.Recorder, *recorder.PromRecorder) {
	var sinks recorder.Multi
	if cfg.Recorder.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, skipping: %v", err)
		} else {
			sinks = append(sinks, sr)
		}
	}
	if cfg.Recorder.JSONPath != "" {
		sinks = append(sinks, recorder.NewJSONRecorder(cfg.Recorder.JSONPath))
	}
	var prom *recorder.PromRecorder
	if cfg.Recorder.PromTextfile != "" || cfg.Recorder.PromListen != "" {
		prom = recorder.NewPromRecorder(cfg.Recorder.PromNamespace, cfg.Recorder.PromTextfile)
		sinks = append(sinks, prom)
	}
	switch len(sinks) {
	case 0:
		return recorder.NewNoopRecorder(), nil
	case 1:
		return sinks[0], prom
	}
	return sinks, prom
}
