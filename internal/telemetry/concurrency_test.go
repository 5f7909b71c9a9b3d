// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRecorder_ConcurrentRecordTurn tests that concurrent RecordTurn calls
// do not race the writer goroutine or each other.
func TestRecorder_ConcurrentRecordTurn(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	r, err := Open(dbPath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordTurn(TurnStats{
				SessionID:     "sess_conc",
				StartedAt:     time.Now(),
				TimeToFirst:   10 * time.Millisecond,
				Duration:      100 * time.Millisecond,
				RevealedChars: 10,
				PeakBacklog:   5,
			})
		}()
	}
	wg.Wait()

	require.NoError(t, r.Close())

	// Queue overflow drops records, so only bounds hold.
	r2, err := Open(dbPath)
	require.NoError(t, err)
	defer r2.Close()
	sum, err := r2.Summarize(0)
	require.NoError(t, err)
	require.Greater(t, sum.Turns, 0)
	require.LessOrEqual(t, sum.Turns, 50)
}
