package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/ui/model"
)

// GenerateSource runs one generation attempt.
type GenerateSource interface {
	Generate(ctx context.Context, req pipeline.GenerateRequest) (pipeline.Result, error)
}

// GenerateView describes the UI surface updated by the presenter.
type GenerateView interface {
	SetGenerateEnabled(enabled bool)
	SetStatus(text string)
}

type generateResult struct {
	res pipeline.Result
	err error
}

// GeneratePresenter runs generations on a worker goroutine and reflects the
// outcome on the UI thread. Only one attempt is in flight at a time.
type GeneratePresenter struct {
	Source GenerateSource
	Model  *model.GenerationModel
	Region *model.RegionModel
	View   GenerateView
	// OnDone, when set, runs on the UI thread after a successful attempt.
	OnDone func(pipeline.Result)
	logger *slog.Logger

	workerOnce sync.Once
	closeOnce  sync.Once
	closed     atomic.Bool
	workCh     chan pipeline.GenerateRequest
	resultCh   chan generateResult
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewGeneratePresenter constructs a generate presenter.
func NewGeneratePresenter(src GenerateSource, m *model.GenerationModel, region *model.RegionModel, view GenerateView, logger *slog.Logger) *GeneratePresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &GeneratePresenter{
		Source:   src,
		Model:    m,
		Region:   region,
		View:     view,
		logger:   logger,
		workCh:   make(chan pipeline.GenerateRequest, 1),
		resultCh: make(chan generateResult, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Trigger starts an attempt unless one is already running. It reports
// whether the attempt was dispatched.
func (p *GeneratePresenter) Trigger(req pipeline.GenerateRequest) bool {
	if p == nil || p.Source == nil || p.Model == nil || p.View == nil || p.closed.Load() {
		return false
	}
	if !p.Model.Begin() {
		p.View.SetStatus(pipeline.Describe(pipeline.ErrBusy))
		return false
	}
	p.ensureWorker()
	p.View.SetGenerateEnabled(false)
	p.View.SetStatus("Generating...")
	p.workCh <- req
	return true
}

func (p *GeneratePresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *GeneratePresenter) runWorker() {
	for req := range p.workCh {
		res, err := p.Source.Generate(p.ctx, req)
		p.resultCh <- generateResult{res: res, err: err}
	}
}

// ProcessResults reflects a finished attempt. Call from the UI thread.
func (p *GeneratePresenter) ProcessResults() {
	if p == nil || p.View == nil {
		return
	}
	select {
	case r := <-p.resultCh:
		p.handleResult(r)
	default:
	}
}

func (p *GeneratePresenter) handleResult(r generateResult) {
	p.Model.End()
	p.View.SetGenerateEnabled(true)
	if r.err != nil {
		p.logger.Warn("generation", "error", r.err)
		p.View.SetStatus(pipeline.Describe(r.err))
		return
	}
	if p.Region != nil {
		p.Region.Set(r.res.Document, r.res.Region)
	}
	p.View.SetStatus(fmt.Sprintf("Done in %.1fs", r.res.Duration.Seconds()))
	if p.OnDone != nil {
		p.OnDone(r.res)
	}
}

// Close cancels a running attempt and stops the worker.
func (p *GeneratePresenter) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.cancel()
		close(p.workCh)
	})
}
