package presenter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/ui/model"
)

type mockGenerator struct {
	release chan struct{}
	res     pipeline.Result
	err     error
	calls   int
	prompts []string
}

func (g *mockGenerator) Generate(ctx context.Context, req pipeline.GenerateRequest) (pipeline.Result, error) {
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return pipeline.Result{}, ctx.Err()
		}
	}
	return g.res, g.err
}

type mockGenerateView struct {
	enabled []bool
	status  []string
}

func (v *mockGenerateView) SetGenerateEnabled(b bool) { v.enabled = append(v.enabled, b) }
func (v *mockGenerateView) SetStatus(s string)        { v.status = append(v.status, s) }

func (v *mockGenerateView) lastStatus() string {
	if len(v.status) == 0 {
		return ""
	}
	return v.status[len(v.status)-1]
}

// waitResult drives ProcessResults like the UI tick until the model goes idle.
func waitResult(t *testing.T, p *GeneratePresenter) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.Model.InFlight() {
		if time.Now().After(deadline) {
			t.Fatalf("generation did not finish")
		}
		p.ProcessResults()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGeneratePresenter_Success(t *testing.T) {
	region := geometry.Rect{Top: 36, Left: 36, Bottom: 264, Right: 264}
	gen := &mockGenerator{res: pipeline.Result{Document: "doc-1", Region: region, Duration: 1500 * time.Millisecond}}
	view := &mockGenerateView{}
	regions := model.NewRegionModel()
	p := NewGeneratePresenter(gen, &model.GenerationModel{}, regions, view, nil)
	defer p.Close()
	var done pipeline.Result
	p.OnDone = func(r pipeline.Result) { done = r }

	if !p.Trigger(pipeline.GenerateRequest{Prompt: "a red door"}) {
		t.Fatalf("expected dispatch")
	}
	waitResult(t, p)

	if len(view.enabled) != 2 || view.enabled[0] || !view.enabled[1] {
		t.Fatalf("expected disable then enable, got %v", view.enabled)
	}
	if view.lastStatus() != "Done in 1.5s" {
		t.Fatalf("unexpected status %q", view.lastStatus())
	}
	if got, doc := regions.Region(); got != region || doc != "doc-1" {
		t.Fatalf("region not recorded: %v %q", got, doc)
	}
	if done.Document != "doc-1" {
		t.Fatalf("OnDone not called")
	}
}

func TestGeneratePresenter_FailureShowsDescription(t *testing.T) {
	gen := &mockGenerator{err: pipeline.ErrWholeCanvas}
	view := &mockGenerateView{}
	p := NewGeneratePresenter(gen, &model.GenerationModel{}, nil, view, nil)
	defer p.Close()

	p.Trigger(pipeline.GenerateRequest{})
	waitResult(t, p)
	if view.lastStatus() != pipeline.Describe(pipeline.ErrWholeCanvas) {
		t.Fatalf("unexpected status %q", view.lastStatus())
	}
}

func TestGeneratePresenter_RejectsSecondTriggerWhileRunning(t *testing.T) {
	gen := &mockGenerator{release: make(chan struct{})}
	view := &mockGenerateView{}
	p := NewGeneratePresenter(gen, &model.GenerationModel{}, nil, view, nil)
	defer p.Close()

	if !p.Trigger(pipeline.GenerateRequest{Prompt: "first"}) {
		t.Fatalf("expected first dispatch")
	}
	if p.Trigger(pipeline.GenerateRequest{Prompt: "second"}) {
		t.Fatalf("second trigger must be rejected")
	}
	if view.lastStatus() != pipeline.Describe(pipeline.ErrBusy) {
		t.Fatalf("expected busy status, got %q", view.lastStatus())
	}
	close(gen.release)
	waitResult(t, p)
	if gen.calls != 1 {
		t.Fatalf("expected one generation, got %d", gen.calls)
	}
}

func TestGeneratePresenter_CloseCancelsRunningAttempt(t *testing.T) {
	gen := &mockGenerator{release: make(chan struct{})}
	view := &mockGenerateView{}
	p := NewGeneratePresenter(gen, &model.GenerationModel{}, nil, view, nil)

	p.Trigger(pipeline.GenerateRequest{})
	p.Close()
	waitResult(t, p)
	if !strings.Contains(view.lastStatus(), "canceled") {
		t.Fatalf("expected cancellation in status, got %q", view.lastStatus())
	}
	if p.Trigger(pipeline.GenerateRequest{}) {
		t.Fatalf("trigger after close must be rejected")
	}
}
