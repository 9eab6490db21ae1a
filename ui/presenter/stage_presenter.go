package presenter

import (
	"sync"
	"time"

	"github.com/soocke/spice-go/domain/pipeline"
)

// StageSource provides the generator methods the presenter requires.
type StageSource interface {
	Current() pipeline.Stage
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StagePresenter receives generator stage changes and updates the view.
type StagePresenter struct {
	src     StageSource
	view    StateView
	latest  pipeline.Stage // last reflected stage
	mu      sync.Mutex
	pending []pipeline.Stage
}

func NewStagePresenter(src StageSource, view StateView) *StagePresenter {
	return &StagePresenter{src: src, view: view}
}

// OnState queues a transitioned stage from the generator listener. It is
// called from the generation worker.
//
// The latest queued stage will be reflected on the next Tick.
func (p *StagePresenter) OnState(prev, next pipeline.Stage) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick processes queued stages and updates the view with the most recent one.
// It clears the pending queue after processing.
func (p *StagePresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	var last pipeline.Stage
	has := len(p.pending) > 0
	if has {
		last = p.pending[len(p.pending)-1]
		p.pending = p.pending[:0]
	}
	p.mu.Unlock()
	if has && last != p.latest {
		p.latest = last
		p.view.SetStateLabel("State: " + last.String())
	}
}
