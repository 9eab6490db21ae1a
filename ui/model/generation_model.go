package model

import (
	"sync/atomic"
)

// GenerationModel tracks whether a generation is in flight. The zero value is idle and usable.
// Concurrency-safe via atomic Bool because the worker goroutine and presenter ticks may race.
type GenerationModel struct{ inFlight atomic.Bool }

// InFlight reports whether a generation is currently running.
func (m *GenerationModel) InFlight() bool {
	if m == nil {
		return false
	}
	return m.inFlight.Load()
}

// Begin marks a generation as started. It returns false when one is already running.
func (m *GenerationModel) Begin() bool {
	if m == nil {
		return false
	}
	return m.inFlight.CompareAndSwap(false, true)
}

// End marks the running generation as finished.
func (m *GenerationModel) End() {
	if m == nil {
		return
	}
	m.inFlight.Store(false)
}
