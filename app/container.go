package app

import (
	"log/slog"

	"github.com/soocke/spice-go/capture"
	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/backend"
	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/domain/raster"
	"github.com/soocke/spice-go/domain/scratch"
	"github.com/soocke/spice-go/ui/model"
	"github.com/soocke/spice-go/ui/presenter"
	"github.com/soocke/spice-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config    *config.Config
	CfgPath   string
	Logger    *slog.Logger
	Host      *raster.Host
	Scratch   *scratch.Storage
	Generator *pipeline.Generator

	Generation *model.GenerationModel
	Session    *model.SessionModel
	Region     *model.RegionModel
	Prompts    *model.PromptHistory

	RootView *view.RootView
	UI       view.UI
	Settings view.ConfigPanel

	// Presenters
	StagePresenter    *presenter.StagePresenter
	SessionPresenter  *presenter.SessionPresenter
	GeneratePresenter *presenter.GeneratePresenter
	PromptPresenter   *presenter.PromptPresenter
	DocumentPresenter *presenter.DocumentPresenter
	SettingsWatcher   *presenter.SettingsWatcher
	Loop              *presenter.Loop
}

// BuildContainer constructs all components. Side-effects limited to creating the scratch directory.
// A backend that cannot be built is logged; attempts then fail as unreachable until settings change.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}

	dir := cfg.ScratchDir
	if dir == "" {
		dir = scratch.DefaultDir()
	}
	store, err := scratch.New(dir, logger)
	if err != nil {
		return nil, err
	}
	c.Scratch = store
	c.Host = raster.New(logger, raster.Options{})

	inp, err := backend.New(cfg, logger)
	if err != nil {
		logger.Error("inpainting backend unavailable", "backend", cfg.Backend, "error", err)
	}
	c.Generator = pipeline.NewGenerator(c.Host, store, inp, logger, pipeline.Options{
		ProbeTimeout: backend.ProbeTimeout(cfg),
		Locker:       store,
	})

	c.Generation = &model.GenerationModel{}
	c.Session = model.NewSessionModel()
	c.Region = model.NewRegionModel()
	c.Prompts = model.NewPromptHistory(cfg.History.MaxItems, msDuration(cfg.History.DebounceMS))

	// View
	c.RootView = view.NewRootView(cfg, logger)
	c.UI = c.RootView
	c.Settings = view.NewConfigPanel(cfg, cfgPath, logger, c.applySettings)

	// Presenters
	c.StagePresenter = presenter.NewStagePresenter(c.Generator, c.UI)
	c.Generator.AddListener(c.StagePresenter.OnState)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Generation, c.UI)
	c.GeneratePresenter = presenter.NewGeneratePresenter(c.Generator, c.Generation, c.Region, c.UI, logger)
	c.PromptPresenter = presenter.NewPromptPresenter(c.Prompts, c.UI)
	c.DocumentPresenter = presenter.NewDocumentPresenter(c.Host, c.UI, config.SelectionStore{Config: cfg, Path: cfgPath}, capture.Grab, logger)
	c.GeneratePresenter.OnDone = func(pipeline.Result) { c.DocumentPresenter.Refresh() }
	c.SettingsWatcher = presenter.NewSettingsWatcher(cfgPath, logger, c.Generator, backend.New, func(next *config.Config) {
		// Keep the panel-owned selection; everything else follows the file.
		next.SelectionX, next.SelectionY, next.SelectionW, next.SelectionH = cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH
		*cfg = *next
	})
	c.Loop = presenter.NewLoop(c.SessionPresenter, c.StagePresenter, c.GeneratePresenter, c.PromptPresenter, c.SettingsWatcher, nil)
	return c, nil
}

// applySettings rebuilds the backend right after the settings window saved.
func (c *AppContainer) applySettings(cfg *config.Config) {
	inp, err := backend.New(cfg, c.Logger)
	if err != nil {
		c.Logger.Error("backend rebuild failed; keeping previous backend", "error", err)
		return
	}
	c.Generator.SetInpainter(inp)
}
