package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows generation statistics.
type SessionStats interface {
	SetLast(d time.Duration)
	SetTotal(d time.Duration)
	SetCount(n int)
}

type sessionStats struct {
	lastLbl  *LabelWidget
	totalLbl *LabelWidget
	countLbl *LabelWidget
}

// NewSessionStats creates last, total and count labels in a grid layout
// starting at (row, startCol). If parent is nil, labels are positioned
// relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{lastLbl: Label(Width(12)), totalLbl: Label(Width(12)), countLbl: Label(Width(15))}
	for i, lbl := range []*LabelWidget{s.countLbl, s.lastLbl, s.totalLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.countLbl.Configure(Txt("Generations: 0"))
	s.lastLbl.Configure(Txt("Last: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetLast updates the duration of the last or running generation.
func (s *sessionStats) SetLast(d time.Duration) {
	if s == nil || s.lastLbl == nil {
		return
	}
	s.lastLbl.Configure(Txt("Last: " + clock(d)))
}

// SetTotal updates the accumulated generation time.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

// SetCount updates the number of finished generations.
func (s *sessionStats) SetCount(n int) {
	if s == nil || s.countLbl == nil {
		return
	}
	s.countLbl.Configure(Txt(fmt.Sprintf("Generations: %d", n)))
}
