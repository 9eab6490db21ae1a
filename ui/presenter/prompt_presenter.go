package presenter

import (
	"time"

	"github.com/soocke/spice-go/ui/model"
)

// PromptView shows the prompt text and the availability of undo/redo.
type PromptView interface {
	SetPrompt(text string)
	SetHistoryButtons(canUndo, canRedo bool)
}

// PromptPresenter keeps the prompt field and its history in sync.
type PromptPresenter struct {
	hist *model.PromptHistory
	view PromptView

	canUndo, canRedo bool
	synced           bool
}

func NewPromptPresenter(hist *model.PromptHistory, view PromptView) *PromptPresenter {
	return &PromptPresenter{hist: hist, view: view}
}

// OnEdit records a keystroke-level change of the prompt text.
func (p *PromptPresenter) OnEdit(text string, now time.Time) {
	if p == nil || p.hist == nil {
		return
	}
	p.hist.Edit(text, now)
	p.refreshButtons()
}

// Undo restores the previous prompt.
func (p *PromptPresenter) Undo() {
	if p == nil || p.hist == nil || p.view == nil {
		return
	}
	if text, ok := p.hist.Undo(); ok {
		p.view.SetPrompt(text)
	}
	p.refreshButtons()
}

// Redo restores the next prompt.
func (p *PromptPresenter) Redo() {
	if p == nil || p.hist == nil || p.view == nil {
		return
	}
	if text, ok := p.hist.Redo(); ok {
		p.view.SetPrompt(text)
	}
	p.refreshButtons()
}

// Commit records text immediately, e.g. when a generation starts.
func (p *PromptPresenter) Commit(text string) {
	if p == nil || p.hist == nil {
		return
	}
	p.hist.Push(text)
	p.refreshButtons()
}

// Tick commits debounced edits.
func (p *PromptPresenter) Tick(now time.Time) {
	if p == nil || p.hist == nil {
		return
	}
	if p.hist.Flush(now) || !p.synced {
		p.refreshButtons()
	}
}

func (p *PromptPresenter) refreshButtons() {
	if p.view == nil {
		return
	}
	u, r := p.hist.CanUndo(), p.hist.CanRedo()
	if p.synced && u == p.canUndo && r == p.canRedo {
		return
	}
	p.canUndo, p.canRedo, p.synced = u, r, true
	p.view.SetHistoryButtons(u, r)
}
