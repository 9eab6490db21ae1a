package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
)

// DefaultProbeTimeout bounds the connectivity check made before any edit.
const DefaultProbeTimeout = 3 * time.Second

// Options tunes a Generator.
type Options struct {
	ProbeTimeout time.Duration
	// Locker, when set, is held for the whole attempt.
	Locker Locker
}

// GenerateRequest holds the user inputs of one attempt.
type GenerateRequest struct {
	Prompt     string
	Denoise    float64
	ControlEnd float64
}

// Result describes a successful attempt.
type Result struct {
	Document string
	Region   geometry.Rect
	Duration time.Duration
}

// Generator runs the whole pipeline for the active document. It allows one
// attempt at a time and reports progress to stage listeners.
type Generator struct {
	host       host.Host
	classifier *Classifier
	extractor  *Extractor
	compositor *Compositor
	logger     *slog.Logger
	opts       Options

	running sync.Mutex

	mu        sync.Mutex
	inpainter Inpainter
	stage     Stage
	listeners []StageListener
}

func NewGenerator(h host.Host, s Scratch, inp Inpainter, logger *slog.Logger, opts Options) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	return &Generator{
		host:       h,
		classifier: NewClassifier(h, logger),
		extractor:  NewExtractor(h, s, logger),
		compositor: NewCompositor(h, s, logger),
		logger:     logger,
		opts:       opts,
		inpainter:  inp,
	}
}

// SetInpainter swaps the backend used by subsequent attempts.
func (g *Generator) SetInpainter(inp Inpainter) {
	g.mu.Lock()
	g.inpainter = inp
	g.mu.Unlock()
}

// AddListener registers a stage listener.
func (g *Generator) AddListener(l StageListener) {
	if l == nil {
		return
	}
	g.mu.Lock()
	g.listeners = append(g.listeners, l)
	g.mu.Unlock()
}

// Current returns the latest stage.
func (g *Generator) Current() Stage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stage
}

func (g *Generator) transition(next Stage) {
	g.mu.Lock()
	prev := g.stage
	g.stage = next
	ls := append([]StageListener(nil), g.listeners...)
	g.mu.Unlock()
	if prev == next {
		return
	}
	g.logger.Debug("generation stage", "from", prev.String(), "to", next.String())
	for _, l := range ls {
		l(prev, next)
	}
}

// Generate inpaints the active selection of the active document.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (Result, error) {
	if !g.running.TryLock() {
		return Result{}, ErrBusy
	}
	defer g.running.Unlock()
	if g.opts.Locker != nil {
		unlock, err := g.opts.Locker.Lock()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		defer unlock()
	}

	start := time.Now()
	res, err := g.generate(ctx, req)
	if err != nil {
		g.transition(StageFailed)
		g.logger.Warn("generation failed", "error", err)
		return Result{}, err
	}
	res.Duration = time.Since(start)
	g.transition(StageDone)
	g.logger.Info("generation complete", "document", res.Document, "region", res.Region.String(), "duration", res.Duration)
	return res, nil
}

func (g *Generator) generate(ctx context.Context, req GenerateRequest) (Result, error) {
	g.transition(StageChecking)
	doc, ok := g.host.ActiveDocument()
	if !ok {
		return Result{}, ErrNoDocument
	}
	sel, ok := doc.SelectionBounds().Get()
	if !ok {
		return Result{}, ErrNoSelection
	}

	// The endpoint is probed before the classifier touches the document.
	g.mu.Lock()
	inp := g.inpainter
	g.mu.Unlock()
	if inp == nil {
		return Result{}, fmt.Errorf("%w: no backend configured", ErrUnreachable)
	}
	pctx, cancel := context.WithTimeout(ctx, g.opts.ProbeTimeout)
	err := inp.Ping(pctx)
	cancel()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	whole, err := g.classifier.IsWholeCanvas(ctx, doc)
	if err != nil {
		return Result{}, failed(StageChecking, err)
	}
	if whole {
		return Result{}, ErrWholeCanvas
	}

	region := geometry.ComputeRegion(sel, doc.Width(), doc.Height())
	g.logger.Debug("region computed", "selection", sel.String(), "region", region.String(),
		"canvas_w", doc.Width(), "canvas_h", doc.Height())

	g.transition(StageExtracting)
	mask, err := g.extractor.Extract(ctx, doc, region, KindMask)
	if err != nil {
		return Result{}, failed(StageExtracting, err)
	}
	img, err := g.extractor.Extract(ctx, doc, region, KindImage)
	if err != nil {
		return Result{}, failed(StageExtracting, err)
	}

	g.transition(StageGenerating)
	out, err := inp.Inpaint(ctx, InpaintRequest{
		Prompt:     req.Prompt,
		Image:      img,
		Mask:       mask,
		Denoise:    req.Denoise,
		ControlEnd: req.ControlEnd,
		Region:     region,
	})
	if err != nil {
		return Result{}, failed(StageGenerating, err)
	}

	g.transition(StagePlacing)
	if err := g.compositor.Place(ctx, doc, out, region); err != nil {
		return Result{}, failed(StagePlacing, err)
	}
	return Result{Document: doc.Name(), Region: region}, nil
}
