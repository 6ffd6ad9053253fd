package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"AMMSim/internal/simulation"
	"AMMSim/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Simulation struct {
		NumTraders       int     `yaml:"num_traders"`
		NumArbitrageurs  int     `yaml:"num_arbitrageurs"`
		TraderInitialDai float64 `yaml:"trader_initial_dai"`
		TraderInitialEth float64 `yaml:"trader_initial_eth"`
		PoolInitialDai   float64 `yaml:"pool_initial_dai"`
		PoolInitialEth   float64 `yaml:"pool_initial_eth"`
		NumTicks         int     `yaml:"num_ticks"`
		Seed             int64   `yaml:"seed"`
	} `yaml:"simulation"`
	Policy strategy.Policy `yaml:"policy"`
	Oracle struct {
		Frequency      float64 `yaml:"frequency"`
		Amplitude      float64 `yaml:"amplitude"`
		NoiseAmplitude float64 `yaml:"noise_amplitude"`
		NoiseScale     float64 `yaml:"noise_scale"`
	} `yaml:"oracle"`
	Recorder struct {
		SQLitePath    string `yaml:"sqlite_path"`
		JSONPath      string `yaml:"json_path"`
		PromTextfile  string `yaml:"prom_textfile"`
		PromNamespace string `yaml:"prom_namespace"`
		// PromListen serves the gauges over HTTP while a schedule is running.
		PromListen string `yaml:"prom_listen"`
	} `yaml:"recorder"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		// Cron is a standard five-field spec. Empty means run once and exit.
		Cron string `yaml:"cron"`
		// MaxRuns stops the series after that many runs; 0 is unbounded.
		MaxRuns int `yaml:"max_runs"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Default returns the reference experiment with no recorders or schedule.
func Default() *Config {
	cfg := &Config{}
	p := simulation.DefaultParams()
	cfg.Simulation.NumTraders = p.NumTraders
	cfg.Simulation.NumArbitrageurs = p.NumArbitrageurs
	cfg.Simulation.TraderInitialDai = p.TraderInitialDai
	cfg.Simulation.TraderInitialEth = p.TraderInitialEth
	cfg.Simulation.PoolInitialDai = p.PoolInitialDai
	cfg.Simulation.PoolInitialEth = p.PoolInitialEth
	cfg.Simulation.NumTicks = p.NumTicks
	cfg.Simulation.Seed = p.Seed
	cfg.Policy = p.Policy
	cfg.Oracle.Frequency = p.Oracle.Frequency
	cfg.Oracle.Amplitude = p.Oracle.Amplitude
	cfg.Recorder.PromNamespace = "ammsim"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"AMMSIM_NUM_TRADERS":      &c.Simulation.NumTraders,
		"AMMSIM_NUM_ARBITRAGEURS": &c.Simulation.NumArbitrageurs,
		"AMMSIM_NUM_TICKS":        &c.Simulation.NumTicks,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv("AMMSIM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("env AMMSIM_SEED: %w", err)
		}
		c.Simulation.Seed = n
	}

	strs := map[string]*string{
		"AMMSIM_SQLITE_PATH":   &c.Recorder.SQLitePath,
		"AMMSIM_JSON_PATH":     &c.Recorder.JSONPath,
		"AMMSIM_PROM_TEXTFILE": &c.Recorder.PromTextfile,
		"AMMSIM_PROM_LISTEN":   &c.Recorder.PromListen,
		"AMMSIM_CRON":          &c.Schedule.Cron,
		"TELEGRAM_BOT_TOKEN":   &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":     &c.Telegram.ChatID,
		"HTTPS_PROXY":          &c.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return nil
}

// Params converts the simulation sections into run parameters.
func (c *Config) Params() simulation.Params {
	return simulation.Params{
		NumTraders:       c.Simulation.NumTraders,
		NumArbitrageurs:  c.Simulation.NumArbitrageurs,
		TraderInitialDai: c.Simulation.TraderInitialDai,
		TraderInitialEth: c.Simulation.TraderInitialEth,
		PoolInitialDai:   c.Simulation.PoolInitialDai,
		PoolInitialEth:   c.Simulation.PoolInitialEth,
		NumTicks:         c.Simulation.NumTicks,
		Seed:             c.Simulation.Seed,
		Policy:           c.Policy,
		Oracle: simulation.OracleParams{
			Frequency:      c.Oracle.Frequency,
			Amplitude:      c.Oracle.Amplitude,
			NoiseAmplitude: c.Oracle.NoiseAmplitude,
			NoiseScale:     c.Oracle.NoiseScale,
		},
	}
}

// TelegramEnabled reports whether run summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks the simulation ranges, including the oracle and sizing
// sections, and the optional sections.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
	}
	if c.Schedule.MaxRuns < 0 {
		errs = append(errs, fmt.Errorf("schedule.max_runs must be >= 0, got %d", c.Schedule.MaxRuns))
	}
	return errors.Join(errs...)
}
