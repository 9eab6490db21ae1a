package app

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/ui/theme"
	"github.com/soocke/spice-go/ui/view"
)

const (
	tick = 100 * time.Millisecond
)

type app struct {
	c       *AppContainer
	title   string
	width   int
	height  int
	afterID string
	closed  bool
}

func NewApp(title string, width, height int, c *AppContainer) *app {
	a := &app{c: c, title: title, width: width, height: height}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the panel and blocks in the Tk event loop.
func (a *app) Start() {
	c := a.c
	theme.SetDark(c.Config.DarkMode)
	c.RootView.Build(view.Handlers{
		OnGenerate:   a.generate,
		OnPromptEdit: func(text string) { c.PromptPresenter.OnEdit(text, time.Now()) },
		OnUndo:       c.PromptPresenter.Undo,
		OnRedo:       c.PromptPresenter.Redo,
		OnCapture:    c.DocumentPresenter.CaptureScreen,
		OnOpen:       c.DocumentPresenter.Open,
		OnSelect:     c.DocumentPresenter.Select,
		OnSettings:   c.Settings.OpenOrFocus,
		OnExit:       a.exitHandler,
	})
	if err := c.SettingsWatcher.Start(); err != nil {
		c.Logger.Warn("settings live reload disabled", "path", c.CfgPath, "error", err)
	}
	c.DocumentPresenter.Refresh()

	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()

	App.Wait()
}

func (a *app) generate() {
	rv := a.c.RootView
	prompt := rv.Prompt()
	a.c.PromptPresenter.Commit(prompt)
	a.c.GeneratePresenter.Trigger(pipeline.GenerateRequest{
		Prompt:     prompt,
		Denoise:    rv.Denoise(),
		ControlEnd: rv.ControlEnd(),
	})
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.c.SettingsWatcher.Stop()
	a.c.GeneratePresenter.Close()
	a.c.Settings.Close()
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next tick using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

func msDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
