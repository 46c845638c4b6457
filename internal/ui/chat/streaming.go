// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FRAGMENT BATCHING
// =============================================================================
//
// Providers emit fragments far faster than a terminal can usefully
// repaint. Rendering each one individually burns CPU on layout and makes
// the viewport flicker, so fragments accumulate in a StreamBuffer and
// the tick loop drains it at a capped rate.

const (
	// streamBatchSize flushes early once this many bytes are pending,
	// keeping latency low on providers that emit large fragments.
	streamBatchSize = 15

	// streamTickInterval caps repaints at roughly thirty per second.
	streamTickInterval = 33 * time.Millisecond
)

// StreamBuffer accumulates reply fragments between repaints.
type StreamBuffer struct {
	mu      sync.Mutex
	pending strings.Builder
	last    time.Time
}

// NewStreamBuffer creates an empty buffer.
func NewStreamBuffer() *StreamBuffer {
	return &StreamBuffer{}
}

// Write appends a fragment to the pending batch.
func (b *StreamBuffer) Write(fragment string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.WriteString(fragment)
}

// Flush returns the pending text when a repaint is due: enough bytes
// accumulated, or streamTickInterval passed since the last flush. The
// zero last-flush time means the first fragment always flushes
// immediately, so time to first visible token stays low.
func (b *StreamBuffer) Flush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending.Len() == 0 {
		return "", false
	}
	if b.pending.Len() < streamBatchSize && time.Since(b.last) < streamTickInterval {
		return "", false
	}
	return b.drain(), true
}

// ForceFlush returns whatever is pending regardless of batching. Called
// when the turn ends so no tail fragment is lost.
func (b *StreamBuffer) ForceFlush() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drain()
}

// drain empties the buffer. Callers hold b.mu.
func (b *StreamBuffer) drain() string {
	out := b.pending.String()
	b.pending.Reset()
	b.last = time.Now()
	return out
}

// Pending reports the number of buffered bytes.
func (b *StreamBuffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending.Len()
}

// Reset discards buffered fragments without repainting. Called when a
// new turn starts so a cancelled turn's tail never leaks into the next.
func (b *StreamBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.Reset()
	b.last = time.Time{}
}

// streamTickCmd schedules the next flush check while a turn is live.
func streamTickCmd() tea.Cmd {
	return tea.Tick(streamTickInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg(t)
	})
}
