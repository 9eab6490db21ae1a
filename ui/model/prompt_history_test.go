package model

import (
	"fmt"
	"testing"
	"time"
)

func TestPromptHistory_DebouncesEdits(t *testing.T) {
	h := NewPromptHistory(0, 400*time.Millisecond)
	base := time.Unix(0, 0)

	h.Edit("a", base)
	h.Edit("a c", base.Add(100*time.Millisecond))
	h.Edit("a cat", base.Add(200*time.Millisecond))
	if h.Flush(base.Add(500 * time.Millisecond)) {
		t.Fatalf("flush before debounce deadline must not commit")
	}
	if !h.Flush(base.Add(600 * time.Millisecond)) {
		t.Fatalf("expected commit after debounce")
	}
	if h.Len() != 1 {
		t.Fatalf("expected one entry, got %d", h.Len())
	}
	if cur, _ := h.Current(); cur != "a cat" {
		t.Fatalf("unexpected current %q", cur)
	}
}

func TestPromptHistory_UndoRedo(t *testing.T) {
	h := NewPromptHistory(10, 0)
	h.Push("sky")
	h.Push("blue sky")
	h.Push("blue sky, clouds")

	if got, ok := h.Undo(); !ok || got != "blue sky" {
		t.Fatalf("undo: got %q %v", got, ok)
	}
	if got, ok := h.Undo(); !ok || got != "sky" {
		t.Fatalf("undo: got %q %v", got, ok)
	}
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo past the first entry must fail")
	}
	if got, ok := h.Redo(); !ok || got != "blue sky" {
		t.Fatalf("redo: got %q %v", got, ok)
	}

	// A new entry discards the redo tail.
	h.Push("red sky")
	if h.CanRedo() {
		t.Fatalf("redo must be cleared after push")
	}
	if h.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.Len())
	}
}

func TestPromptHistory_UndoCommitsPendingEdit(t *testing.T) {
	h := NewPromptHistory(10, time.Hour)
	h.Push("sky")
	h.Edit("sky at dusk", time.Unix(0, 0))
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("pending edit must be undoable and block redo")
	}
	if got, ok := h.Undo(); !ok || got != "sky" {
		t.Fatalf("undo: got %q %v", got, ok)
	}
	if got, ok := h.Redo(); !ok || got != "sky at dusk" {
		t.Fatalf("redo must restore the pending edit, got %q %v", got, ok)
	}
}

func TestPromptHistory_BoundedAndDeduplicated(t *testing.T) {
	h := NewPromptHistory(50, 0)
	for i := 0; i < 60; i++ {
		h.Push(fmt.Sprintf("prompt %d", i))
	}
	h.Push("prompt 59")
	if h.Len() != 50 {
		t.Fatalf("expected cap of 50, got %d", h.Len())
	}
	steps := 0
	var last string
	for {
		s, ok := h.Undo()
		if !ok {
			break
		}
		last = s
		steps++
	}
	if steps != 49 || last != "prompt 10" {
		t.Fatalf("expected 49 undos ending at prompt 10, got %d ending at %q", steps, last)
	}
}
