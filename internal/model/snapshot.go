package model

import "time"

// AgentBalance is one agent's holdings at the start of a tick.
type AgentBalance struct {
	ID   int     `json:"id"`
	Role Role    `json:"role"`
	Eth  float64 `json:"eth"`
	Dai  float64 `json:"dai"`
}

// Snapshot is the per-tick record handed to a recorder before agents act.
type Snapshot struct {
	RunID         string         `json:"run_id"`
	Tick          int            `json:"tick"`
	PoolPrice     float64        `json:"pool_price"`
	ExternalPrice float64        `json:"external_price"`
	ReserveDai    float64        `json:"reserve_dai"`
	ReserveEth    float64        `json:"reserve_eth"`
	Agents        []AgentBalance `json:"agents"`
}

// RunSummary aggregates a finished (or aborted) run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Seed       int64     `json:"seed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Ticks          int `json:"ticks"`
	NumTraders     int `json:"num_traders"`
	NumArbitrageur int `json:"num_arbitrageurs"`

	InitialPrice float64 `json:"initial_price"`
	FinalPrice   float64 `json:"final_price"`
	BasePrice    float64 `json:"base_price"`
	InitialK     float64 `json:"initial_k"`
	FinalK       float64 `json:"final_k"`

	// TrackingError is the mean absolute relative gap between pool and
	// external price over all recorded ticks.
	TrackingError float64 `json:"tracking_error"`
	MaxGap        float64 `json:"max_gap"`
	PriceHigh     float64 `json:"price_high"`
	PriceLow      float64 `json:"price_low"`
	// SmoothedGap is the mean absolute gap over the closing ticks.
	SmoothedGap float64 `json:"smoothed_gap"`
	// RangePosition is where the final pool price sits within the run's
	// high/low band, 0 at the low and 1 at the high.
	RangePosition float64 `json:"range_position"`

	TradesExecuted int `json:"trades_executed"`
	TradesSkipped  int `json:"trades_skipped"`

	Err string `json:"error,omitempty"`
}

// KDrift returns the relative change of the constant product over the run.
func (s *RunSummary) KDrift() float64 {
	if s.InitialK == 0 {
		return 0
	}
	return (s.FinalK - s.InitialK) / s.InitialK
}
