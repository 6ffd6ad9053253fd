package recorder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"AMMSim/internal/model"
)

// SQLiteRecorder persists tick series and run summaries to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// TickRow is one stored tick as read back from the database.
type TickRow struct {
	RunID         string  `db:"run_id"`
	Tick          int     `db:"tick"`
	PoolPrice     float64 `db:"pool_price"`
	ExternalPrice float64 `db:"external_price"`
	ReserveDai    float64 `db:"reserve_dai"`
	ReserveEth    float64 `db:"reserve_eth"`
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so a notebook can read while a run is still writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id           TEXT PRIMARY KEY,
			seed             INTEGER NOT NULL,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER NOT NULL,
			ticks            INTEGER NOT NULL,
			num_traders      INTEGER NOT NULL,
			num_arbitrageurs INTEGER NOT NULL,
			initial_price    REAL,
			final_price      REAL,
			base_price       REAL,
			initial_k        REAL,
			final_k          REAL,
			tracking_error   REAL,
			max_gap          REAL,
			price_high       REAL,
			price_low        REAL,
			smoothed_gap     REAL,
			range_position   REAL,
			trades_executed  INTEGER,
			trades_skipped   INTEGER,
			error            TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS ticks (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			tick           INTEGER NOT NULL,
			pool_price     REAL,
			external_price REAL,
			reserve_dai    REAL,
			reserve_eth    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_run ON ticks(run_id, tick)`,

		`CREATE TABLE IF NOT EXISTS agent_balances (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id   TEXT NOT NULL,
			tick     INTEGER NOT NULL,
			agent_id INTEGER NOT NULL,
			role     TEXT,
			eth      REAL,
			dai      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agent_balances_run ON agent_balances(run_id, agent_id, tick)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Record(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO ticks
		(run_id, tick, pool_price, external_price, reserve_dai, reserve_eth)
		VALUES (?,?,?,?,?,?)`,
		snap.RunID, snap.Tick, snap.PoolPrice, snap.ExternalPrice, snap.ReserveDai, snap.ReserveEth,
	); err != nil {
		return fmt.Errorf("insert tick %d: %w", snap.Tick, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO agent_balances
		(run_id, tick, agent_id, role, eth, dai)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range snap.Agents {
		if _, err := stmt.Exec(snap.RunID, snap.Tick, a.ID, a.Role.String(), a.Eth, a.Dai); err != nil {
			return fmt.Errorf("insert agent %d tick %d: %w", a.ID, snap.Tick, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordRun(sum *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(run_id, seed, started_at, finished_at, ticks, num_traders, num_arbitrageurs,
		 initial_price, final_price, base_price, initial_k, final_k,
		 tracking_error, max_gap, price_high, price_low, smoothed_gap, range_position,
		 trades_executed, trades_skipped, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sum.RunID, sum.Seed, unixOrNow(sum.StartedAt), unixOrNow(sum.FinishedAt),
		sum.Ticks, sum.NumTraders, sum.NumArbitrageur,
		sum.InitialPrice, sum.FinalPrice, sum.BasePrice, sum.InitialK, sum.FinalK,
		sum.TrackingError, sum.MaxGap, sum.PriceHigh, sum.PriceLow, sum.SmoothedGap, sum.RangePosition,
		sum.TradesExecuted, sum.TradesSkipped, sum.Err,
	)
	return err
}

// Ticks returns the stored tick series of a run in tick order.
func (r *SQLiteRecorder) Ticks(runID string) ([]TickRow, error) {
	var rows []TickRow
	err := r.db.Select(&rows, `SELECT run_id, tick, pool_price, external_price, reserve_dai, reserve_eth
		FROM ticks WHERE run_id = ? ORDER BY tick`, runID)
	return rows, err
}

// RunIDs lists every recorded run, most recent first.
func (r *SQLiteRecorder) RunIDs() ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, "SELECT run_id FROM runs ORDER BY started_at DESC, run_id")
	return ids, err
}

// AgentCount returns how many balance rows a run stored for one tick.
func (r *SQLiteRecorder) AgentCount(runID string, tick int) (int, error) {
	var n int
	err := r.db.Get(&n, "SELECT COUNT(*) FROM agent_balances WHERE run_id = ? AND tick = ?", runID, tick)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func unixOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}
