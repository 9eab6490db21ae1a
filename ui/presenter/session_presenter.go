package presenter

import (
	"time"

	"github.com/soocke/spice-go/ui/model"
)

// InFlightModel reports whether a generation is running.
type InFlightModel interface{ InFlight() bool }

// SessionView displays generation statistics.
type SessionView interface {
	SetSession(last, total time.Duration, count int)
}

// SessionPresenter formats generation durations and counts from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	gen  InFlightModel
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, gen InFlightModel, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, gen: gen, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.gen == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.gen.InFlight(), now)
	last, total := p.sess.Values()
	p.view.SetSession(last, total, p.sess.Count())
}
