package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/spice-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings window. It owns its widgets and writes back
// into *config.Config on ApplyChanges.
type ConfigPanel interface {
	OpenOrFocus()
	ApplyChanges() // parses widget text into underlying config and persists
	Close()
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	onSaved  func(*config.Config)
	win      *ToplevelWidget
	status   *LabelWidget
	widgets  map[string]*TextWidget // keyed by internal field id
	applyBtn *ButtonWidget
}

// NewConfigPanel creates the view bound to cfg. onSaved runs after a successful save.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onSaved func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onSaved: onSaved, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Settings")
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.Close)
	v.win = win
	c := v.cfg
	row := 0
	makeRow := func(id, label, value string, width int) {
		lbl := win.Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := win.Text(Height(1), Width(width))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("apiURL", "API URL", c.APIURL, 44)
	makeRow("backend", "Backend (sdapi/openai)", c.Backend, 16)
	makeRow("width", "Width", fmt.Sprintf("%d", c.Width), 16)
	makeRow("height", "Height", fmt.Sprintf("%d", c.Height), 16)
	makeRow("steps", "Steps", fmt.Sprintf("%d", c.Steps), 16)
	makeRow("cfgScale", "CFG Scale", fmt.Sprintf("%.1f", c.CFGScale), 16)
	makeRow("negativePrompt", "Negative Prompt", c.NegativePrompt, 44)
	makeRow("sampler", "Sampler", c.SamplerName, 16)
	makeRow("controlNet", "ControlNet (true/false)", fmt.Sprintf("%t", c.ControlNet.Enabled), 16)
	makeRow("controlNetModule", "ControlNet Module", c.ControlNet.Module, 24)
	makeRow("controlNetModel", "ControlNet Model", c.ControlNet.Model, 24)
	makeRow("controlNetWeight", "ControlNet Weight", fmt.Sprintf("%.2f", c.ControlNet.Weight), 16)
	makeRow("softInpainting", "Soft Inpainting (true/false)", fmt.Sprintf("%t", c.SoftInpainting), 16)
	makeRow("probeTimeout", "Probe Timeout ms", fmt.Sprintf("%d", c.ProbeTimeoutMS), 16)
	makeRow("openaiModel", "OpenAI Model", c.OpenAI.Model, 24)
	v.applyBtn = win.Button(Txt("Save Settings"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.status = win.Label(Txt(""), Anchor("w"))
	Grid(v.status, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Bind(win, "<Escape>", Command(v.Close))
}

func (v *configPanel) Close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
		v.status = nil
		v.applyBtn = nil
		v.widgets = make(map[string]*TextWidget)
	}
}

func textOf(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignString := func(id string, dst *string) {
		if w := v.widgets[id]; w != nil {
			*dst = textOf(w)
		}
	}
	assignFloat := func(id string, dst *float64) {
		if w := v.widgets[id]; w != nil {
			if f, ok := parseFloatField(textOf(w)); ok {
				*dst = f
			}
		}
	}
	assignInt := func(id string, dst *int) {
		if w := v.widgets[id]; w != nil {
			if i, ok := parseIntField(textOf(w)); ok {
				*dst = i
			}
		}
	}
	assignBool := func(id string, dst *bool) {
		if w := v.widgets[id]; w != nil {
			if b, ok := parseBoolLoose(textOf(w)); ok {
				*dst = b
			}
		}
	}
	assignString("apiURL", &cfg.APIURL)
	assignString("backend", &cfg.Backend)
	assignInt("width", &cfg.Width)
	assignInt("height", &cfg.Height)
	assignInt("steps", &cfg.Steps)
	assignFloat("cfgScale", &cfg.CFGScale)
	assignString("negativePrompt", &cfg.NegativePrompt)
	assignString("sampler", &cfg.SamplerName)
	assignBool("controlNet", &cfg.ControlNet.Enabled)
	assignString("controlNetModule", &cfg.ControlNet.Module)
	assignString("controlNetModel", &cfg.ControlNet.Model)
	assignFloat("controlNetWeight", &cfg.ControlNet.Weight)
	assignBool("softInpainting", &cfg.SoftInpainting)
	assignInt("probeTimeout", &cfg.ProbeTimeoutMS)
	assignString("openaiModel", &cfg.OpenAI.Model)
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		v.setStatus("Save failed")
		return
	}
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	v.setStatus("Settings Saved!")
	if v.onSaved != nil {
		v.onSaved(v.cfg)
	}
}

func (v *configPanel) setStatus(s string) {
	if v.status != nil {
		v.status.Configure(Txt(s))
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
