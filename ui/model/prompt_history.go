package model

import (
	"time"
)

// Prompt history defaults.
const (
	DefaultHistoryMax      = 50
	DefaultHistoryDebounce = 400 * time.Millisecond
)

// PromptHistory is a bounded undo/redo stack of prompt texts. Edits are
// debounced: a text is committed once no further edit arrived for the
// debounce interval. Time is passed in so callers control the clock.
// Not safe for concurrent use; it lives on the UI thread.
type PromptHistory struct {
	max      int
	debounce time.Duration

	entries []string
	index   int // position of the current entry, -1 when empty

	pending    string
	hasPending bool
	deadline   time.Time
}

// NewPromptHistory returns an empty history. Non-positive arguments select the defaults.
func NewPromptHistory(max int, debounce time.Duration) *PromptHistory {
	if max <= 0 {
		max = DefaultHistoryMax
	}
	if debounce < 0 {
		debounce = DefaultHistoryDebounce
	}
	return &PromptHistory{max: max, debounce: debounce, index: -1}
}

// Edit schedules text for commit after the debounce interval.
func (h *PromptHistory) Edit(text string, now time.Time) {
	if h == nil {
		return
	}
	h.pending = text
	h.hasPending = true
	h.deadline = now.Add(h.debounce)
}

// Flush commits a pending edit whose debounce interval has elapsed.
// It reports whether an entry was committed.
func (h *PromptHistory) Flush(now time.Time) bool {
	if h == nil || !h.hasPending || now.Before(h.deadline) {
		return false
	}
	return h.commitPending()
}

func (h *PromptHistory) commitPending() bool {
	if !h.hasPending {
		return false
	}
	h.hasPending = false
	return h.Push(h.pending)
}

// Push commits text immediately. Entries after the current one are discarded,
// a text equal to the current entry is ignored and the oldest entry is dropped
// once the history is full.
func (h *PromptHistory) Push(text string) bool {
	if h == nil {
		return false
	}
	if h.index >= 0 && h.entries[h.index] == text {
		return false
	}
	h.entries = append(h.entries[:h.index+1], text)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
	h.index = len(h.entries) - 1
	return true
}

// Undo steps back one entry. A pending edit is committed first so it can be redone.
func (h *PromptHistory) Undo() (string, bool) {
	if h == nil {
		return "", false
	}
	h.commitPending()
	if h.index <= 0 {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// Redo steps forward one entry.
func (h *PromptHistory) Redo() (string, bool) {
	if h == nil {
		return "", false
	}
	if h.hasPending || h.index >= len(h.entries)-1 {
		return "", false
	}
	h.index++
	return h.entries[h.index], true
}

// CanUndo reports whether Undo would move.
func (h *PromptHistory) CanUndo() bool {
	if h == nil {
		return false
	}
	if h.hasPending && h.index >= 0 && h.entries[h.index] != h.pending {
		return true
	}
	return h.index > 0
}

// CanRedo reports whether Redo would move.
func (h *PromptHistory) CanRedo() bool {
	if h == nil {
		return false
	}
	return !h.hasPending && h.index < len(h.entries)-1
}

// Current returns the current entry.
func (h *PromptHistory) Current() (string, bool) {
	if h == nil || h.index < 0 {
		return "", false
	}
	return h.entries[h.index], true
}

// Len returns the number of committed entries.
func (h *PromptHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}
