package model

import (
	"time"
)

// SessionModel tracks the running generation duration, the accumulated generation time
// and the number of finished generations.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active       bool
	start        time.Time
	lastDuration time.Duration
	accumulated  time.Duration
	count        int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current generation state and timestamp.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(generating bool, now time.Time) {
	if m == nil {
		return
	}
	if generating {
		if !m.active { // transition idle -> running
			m.active = true
			m.start = now
			m.lastDuration = 0
		}
		m.lastDuration = now.Sub(m.start)
	} else if m.active { // transition running -> idle
		m.lastDuration = now.Sub(m.start)
		m.accumulated += m.lastDuration
		m.active = false
		m.count++
	}
}

// Values returns the last generation duration and the total accumulated duration.
// The total includes the ongoing generation when active.
func (m *SessionModel) Values() (last, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	last = m.lastDuration
	total = m.accumulated
	if m.active {
		total += last
	}
	return
}

// Count returns the number of finished generations.
func (m *SessionModel) Count() int {
	if m == nil {
		return 0
	}
	return m.count
}
