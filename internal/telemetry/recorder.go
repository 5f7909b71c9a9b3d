// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// =============================================================================
// TURN STATS
// =============================================================================

// TurnStats captures streaming health for one chat turn.
type TurnStats struct {
	SessionID     string
	StartedAt     time.Time
	TimeToFirst   time.Duration
	Duration      time.Duration
	RevealedChars int
	PeakBacklog   int
	Error         string
}

// =============================================================================
// RECORDER
// =============================================================================

// recordQueueSize bounds the async write queue. When full, records are
// dropped rather than blocking the UI loop.
const recordQueueSize = 64

// Recorder persists per-turn stats to a local SQLite database. All writes
// happen on a background goroutine and are best-effort: a broken database
// degrades to dropped records, never to a stalled chat loop.
type Recorder struct {
	db   *sql.DB
	ch   chan TurnStats
	done chan struct{}
}

// Open opens (or creates) the stats database at dbPath and starts the
// writer goroutine.
func Open(dbPath string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate stats db: %w", err)
	}

	r := &Recorder{
		db:   db,
		ch:   make(chan TurnStats, recordQueueSize),
		done: make(chan struct{}),
	}
	go r.writeLoop()
	return r, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id     TEXT NOT NULL,
			started_at     TEXT NOT NULL,
			ttft_ms        INTEGER NOT NULL,
			duration_ms    INTEGER NOT NULL,
			revealed_chars INTEGER NOT NULL,
			peak_backlog   INTEGER NOT NULL,
			error          TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

// RecordTurn queues one turn's stats for persistence. Safe on a nil
// recorder; drops silently when the queue is full.
func (r *Recorder) RecordTurn(stats TurnStats) {
	if r == nil {
		return
	}
	select {
	case r.ch <- stats:
	default:
	}
}

// writeLoop drains the queue until Close.
func (r *Recorder) writeLoop() {
	defer close(r.done)
	for stats := range r.ch {
		// Insert failures are swallowed: stats are advisory.
		_, _ = r.db.Exec(
			`INSERT INTO turns (session_id, started_at, ttft_ms, duration_ms, revealed_chars, peak_backlog, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			stats.SessionID,
			stats.StartedAt.UTC().Format(time.RFC3339Nano),
			stats.TimeToFirst.Milliseconds(),
			stats.Duration.Milliseconds(),
			stats.RevealedChars,
			stats.PeakBacklog,
			stats.Error,
		)
	}
}

// Close flushes queued records and closes the database. Safe on nil.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	close(r.ch)
	<-r.done
	return r.db.Close()
}

// =============================================================================
// SUMMARIES
// =============================================================================

// Summary aggregates recorded turns.
type Summary struct {
	Turns         int
	AvgTTFT       time.Duration
	AvgDuration   time.Duration
	TotalRevealed int64
	MaxBacklog    int
	Errors        int
}

// Summarize aggregates all turns recorded in the last n days. n <= 0 means
// all history.
func (r *Recorder) Summarize(days int) (Summary, error) {
	if r == nil {
		return Summary{}, nil
	}

	query := `SELECT COUNT(*),
		COALESCE(AVG(ttft_ms), 0),
		COALESCE(AVG(duration_ms), 0),
		COALESCE(SUM(revealed_chars), 0),
		COALESCE(MAX(peak_backlog), 0),
		COALESCE(SUM(error != ''), 0)
		FROM turns`
	args := []any{}
	if days > 0 {
		query += " WHERE started_at >= ?"
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		args = append(args, cutoff.Format(time.RFC3339Nano))
	}

	var s Summary
	var avgTTFT, avgDur float64
	row := r.db.QueryRow(query, args...)
	if err := row.Scan(&s.Turns, &avgTTFT, &avgDur, &s.TotalRevealed, &s.MaxBacklog, &s.Errors); err != nil {
		return Summary{}, fmt.Errorf("summarize turns: %w", err)
	}
	s.AvgTTFT = time.Duration(avgTTFT * float64(time.Millisecond))
	s.AvgDuration = time.Duration(avgDur * float64(time.Millisecond))
	return s, nil
}
