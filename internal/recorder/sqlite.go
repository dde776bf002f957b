package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
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
		`CREATE TABLE IF NOT EXISTS price_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			tickers    TEXT,
			since_expr TEXT,
			interval   TEXT,
			span_days  INTEGER,
			auc_json   TEXT,
			cagr_json  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_runs_ts ON price_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS options_scans (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT,
			kind        TEXT,
			contracts   INTEGER,
			best_return REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_options_scans_ts ON options_scans(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPriceRun(run *PriceRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	aucJSON, err := json.Marshal(run.AUC)
	if err != nil {
		return fmt.Errorf("marshal auc: %w", err)
	}
	cagrJSON, err := json.Marshal(run.CAGR)
	if err != nil {
		return fmt.Errorf("marshal cagr: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO price_runs
		(timestamp, tickers, since_expr, interval, span_days, auc_json, cagr_json)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), strings.Join(run.Tickers, ","), run.SinceExpr,
		run.Interval, run.SpanDays, string(aucJSON), string(cagrJSON),
	)
	return err
}

func (r *SQLiteRecorder) RecordOptionsScan(scan *OptionsScan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO options_scans
		(timestamp, ticker, kind, contracts, best_return)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), scan.Ticker, scan.Kind, scan.Contracts, scan.BestReturn,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
