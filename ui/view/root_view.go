package view

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions.
type Handlers struct {
	OnGenerate   func()
	OnPromptEdit func(text string)
	OnUndo       func()
	OnRedo       func()
	OnCapture    func()
	OnOpen       func(path string)
	OnSelect     func(r geometry.Rect)
	OnSettings   func()
	OnExit       func()
}

// RootView composes the top-level panel layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	// Subviews
	Session   SessionStats
	Selection SelectionEntry
	Preview   DocumentPreview

	// Widgets
	StateLabel    *TLabelWidget
	StatusLabel   *LabelWidget
	DocumentLabel *TLabelWidget
	PromptText    *TextWidget
	DenoiseText   *TextWidget
	ControlText   *TextWidget
	GenerateBtn   *TButtonWidget
	UndoBtn       *ButtonWidget
	RedoBtn       *ButtonWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetStatus(text string)
	SetGenerateEnabled(enabled bool)
	SetPrompt(text string)
	SetHistoryButtons(canUndo, canRedo bool)
	UpdatePreview(img image.Image)
	SetDocumentLabel(text string)
	SetSession(last, total time.Duration, count int)
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: state label and document buttons
	rv.StateLabel = TLabel(Txt("State: Idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(1), Columnspan(3), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	for i, b := range []struct {
		text string
		cmd  func()
	}{
		{"Capture Screen", h.OnCapture},
		{"Open...", func() {
			if files := GetOpenFile(Title("Open Image")); len(files) > 0 && h.OnOpen != nil {
				h.OnOpen(files[0])
			}
		}},
		{"Settings", h.OnSettings},
	} {
		if b.cmd == nil {
			continue
		}
		btn := Button(Txt(b.text), Command(b.cmd))
		Grid(btn, In(btnFrame), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(h.OnExit))
	Grid(exitBtn, In(btnFrame), Row(0), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Row 1: document label
	rv.DocumentLabel = TLabel(Txt("Document: <none>"), Anchor("w"), Style(theme.StyleMutedLabel))
	Grid(rv.DocumentLabel, Row(1), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"))

	// Row 2: selection entry
	rv.Selection = NewSelectionEntry(rv.cfg, rv.logger)
	row := rv.Selection.Build(2, func(r geometry.Rect) {
		if h.OnSelect != nil {
			h.OnSelect(r)
		}
	})

	// Prompt with undo/redo
	Grid(Label(Txt("Prompt"), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"))
	rv.UndoBtn = Button(Txt("Undo"), State("disabled"), Command(h.OnUndo))
	Grid(rv.UndoBtn, Row(row), Column(2), Sticky("we"), Padx("0.2m"))
	rv.RedoBtn = Button(Txt("Redo"), State("disabled"), Command(h.OnRedo))
	Grid(rv.RedoBtn, Row(row), Column(3), Sticky("we"), Padx("0.2m"))
	row++
	rv.PromptText = Text(Height(3), Width(60))
	Grid(rv.PromptText, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Bind(rv.PromptText, "<KeyRelease>", Command(func() {
		if h.OnPromptEdit != nil {
			h.OnPromptEdit(rv.Prompt())
		}
	}))
	row++

	// Denoise, control end, generate
	Grid(Label(Txt("Denoise"), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"))
	rv.DenoiseText = Text(Height(1), Width(8))
	Grid(rv.DenoiseText, Row(row), Column(1), Sticky("w"), Padx("0.2m"))
	rv.DenoiseText.Insert("1.0", fmt.Sprintf("%.2f", rv.cfg.Denoise))
	Grid(Label(Txt("Control End"), Anchor("w")), Row(row), Column(2), Sticky("w"), Padx("0.4m"))
	rv.ControlText = Text(Height(1), Width(8))
	Grid(rv.ControlText, Row(row), Column(3), Sticky("w"), Padx("0.2m"))
	rv.ControlText.Insert("1.0", fmt.Sprintf("%.2f", rv.cfg.ControlEnd))
	row++
	rv.GenerateBtn = TButton(Txt("Generate"), Style(theme.StylePrimaryButton), Command(h.OnGenerate))
	Grid(rv.GenerateBtn, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++

	rv.StatusLabel = Label(Txt(""), Anchor("w"))
	Grid(rv.StatusLabel, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"))
	row++

	rv.Session = NewSessionStats(nil, row, 0)
	row++

	rv.Preview = NewDocumentPreview(row)
}

// Prompt returns the prompt text.
func (rv *RootView) Prompt() string {
	if rv == nil {
		return ""
	}
	return textOf(rv.PromptText)
}

// Denoise returns the denoising strength, falling back to the configured value.
func (rv *RootView) Denoise() float64 {
	if rv == nil || rv.cfg == nil {
		return config.DefaultDenoise
	}
	if f, ok := parseFloatField(textOf(rv.DenoiseText)); ok && f >= 0 && f <= 1 {
		return f
	}
	return rv.cfg.Denoise
}

// ControlEnd returns the ControlNet guidance end, falling back to the configured value.
func (rv *RootView) ControlEnd() float64 {
	if rv == nil || rv.cfg == nil {
		return config.DefaultControlEnd
	}
	if f, ok := parseFloatField(textOf(rv.ControlText)); ok && f >= 0 && f <= 1 {
		return f
	}
	return rv.cfg.ControlEnd
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetStatus shows a one-line status message.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetGenerateEnabled toggles the trigger and the inputs of an attempt.
func (rv *RootView) SetGenerateEnabled(enabled bool) {
	if rv == nil || rv.GenerateBtn == nil {
		return
	}
	state := "disabled"
	txt := "Generating..."
	if enabled {
		state, txt = "normal", "Generate"
	}
	rv.GenerateBtn.Configure(State(state), Txt(txt))
	if rv.Selection != nil {
		rv.Selection.SetEditable(enabled)
	}
}

// SetPrompt replaces the prompt text.
func (rv *RootView) SetPrompt(text string) {
	if rv == nil || rv.PromptText == nil {
		return
	}
	rv.PromptText.Delete("1.0", END)
	rv.PromptText.Insert("1.0", text)
}

// SetHistoryButtons enables undo and redo.
func (rv *RootView) SetHistoryButtons(canUndo, canRedo bool) {
	if rv == nil {
		return
	}
	set := func(b *ButtonWidget, on bool) {
		if b == nil {
			return
		}
		if on {
			b.Configure(State("normal"))
		} else {
			b.Configure(State("disabled"))
		}
	}
	set(rv.UndoBtn, canUndo)
	set(rv.RedoBtn, canRedo)
}

// UpdatePreview proxies to the document preview.
func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdatePreview(img)
	}
}

// SetDocumentLabel describes the active document.
func (rv *RootView) SetDocumentLabel(text string) {
	if rv != nil && rv.DocumentLabel != nil {
		rv.DocumentLabel.Configure(Txt(text))
	}
}

// SetSession updates generation statistics.
func (rv *RootView) SetSession(last, total time.Duration, count int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetLast(last)
	rv.Session.SetTotal(total)
	rv.Session.SetCount(count)
}
