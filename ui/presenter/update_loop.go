package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessResults on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Stage    *StagePresenter
	Generate *GeneratePresenter
	Prompt   *PromptPresenter
	Settings *SettingsWatcher
	Schedule func()
}

func NewLoop(sess *SessionPresenter, stage *StagePresenter, gen *GeneratePresenter, prompt *PromptPresenter, settings *SettingsWatcher, schedule func()) *Loop {
	return &Loop{Session: sess, Stage: stage, Generate: gen, Prompt: prompt, Settings: settings, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Apply settings first so a reload is visible before the next attempt.
	if l.Settings != nil {
		l.Settings.Tick(now)
	}
	if l.Stage != nil {
		l.Stage.Tick(now)
	}
	if l.Generate != nil {
		l.Generate.ProcessResults()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Prompt != nil {
		l.Prompt.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
