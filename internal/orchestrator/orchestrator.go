// Package orchestrator drives the screening run: classify the surface,
// enumerate cards, run the stage pipeline per candidate, paginate, and emit
// terminal decisions. A run is single-flight per orchestrator and cooperates
// with cancellation at every suspension point.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/evaluate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/extract"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/greet"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/ledger"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/pageclass"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/paginate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/screening"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/utils"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Start while a previous run is in flight.
// A run is restartable only after it finishes; restarting means a fresh call
// with a fresh ledger, never resuming mid-run.
var ErrAlreadyRunning = errors.New("orchestrator: run already in flight")

const (
	// classifyPollDelay paces re-polling while the surface is unknown,
	// for example during login or a slow navigation.
	classifyPollDelay = 2 * time.Second
	maxUnknownPolls   = 5

	// detailSettle lets a detail navigation finish rendering before the
	// surface is classified and scraped.
	detailSettle = 1500 * time.Millisecond
)

// Classifier decides what kind of page the surface currently shows.
type Classifier interface {
	Classify(ctx context.Context, surface browser.Surface) (pageclass.Classification, error)
}

// CardSource extracts a record from one list card.
type CardSource interface {
	Extract(ctx context.Context, el browser.Element) (*candidate.Record, error)
}

// DetailSource extracts a record from a detail surface.
type DetailSource interface {
	Extract(ctx context.Context, surface browser.Surface) (*candidate.Record, error)
}

// Filter runs the cheap stage 1 and 2 checks.
type Filter interface {
	Apply(rec *candidate.Record, cfg *config.Config) screening.Result
}

// Evaluator runs stage 3 deep scoring. It never fails; scoring errors
// degrade to a fail-open pass inside the evaluator.
type Evaluator interface {
	Evaluate(ctx context.Context, rec *candidate.Record, cfg *config.Config) *candidate.EvaluationResult
}

// Paginator reveals more cards on an exhausted viewport.
type Paginator interface {
	RevealMore(ctx context.Context, surface browser.Surface) (bool, error)
}

// Contacter performs the greet action for an approved candidate.
type Contacter interface {
	Greet(ctx context.Context, surface browser.Surface, rec *candidate.Record) error
}

// EventSink receives every terminal decision. Fire and forget; the run never
// waits on it.
type EventSink interface {
	Record(d candidate.Decision)
}

// Deps bundles the pipeline components. Zero-value fields are filled with
// the production implementations by New.
type Deps struct {
	Classifier Classifier
	Cards      CardSource
	Details    DetailSource
	Filter     Filter
	Evaluator  Evaluator
	Paginator  Paginator
	Contacter  Contacter
	Sink       EventSink

	// CardSelector enumerates visible cards in DOM order.
	CardSelector string
}

// Orchestrator owns one screening run at a time over a single live surface.
// It is intentionally not parallelized across candidates: there is exactly
// one mutable page, so all stages for one candidate complete or are
// abandoned before the next candidate begins.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	ledger *ledger.Ledger
	logger *zap.Logger

	// detailActive reports whether a detail sub-flow currently owns the
	// surface. The run loop never observes it: card processing and
	// pagination share one goroutine, so the sub-flow cannot overlap a
	// reveal. It exists for status queries from outside the run.
	detailActive atomic.Bool

	running atomic.Bool

	settle time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	runErr error
}

// New builds an orchestrator for one configuration snapshot. scorer may be
// nil when no AI provider is configured; sink may be nil when decisions need
// no persistence.
func New(cfg *config.Config, scorer evaluate.ScoringService, sink EventSink, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := Deps{
		Classifier:   pageclass.New(logger),
		Cards:        extract.NewCardExtractor(logger),
		Details:      extract.NewDetailExtractor(logger),
		Filter:       screening.New(logger),
		Evaluator:    evaluate.New(scorer, logger),
		Paginator:    paginate.New(paginate.DefaultSelectors(), logger),
		Contacter:    greet.New(cfg.GreetMessage, logger),
		Sink:         sink,
		CardSelector: paginate.DefaultSelectors().Card,
	}

	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		ledger: ledger.New(),
		logger: logger,
		settle: detailSettle,
	}
}

// NewWithDeps builds an orchestrator with explicit components. Empty Deps
// fields keep the zero value, so callers must supply everything the run
// touches.
func NewWithDeps(cfg *config.Config, deps Deps, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.CardSelector == "" {
		deps.CardSelector = paginate.DefaultSelectors().Card
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		ledger: ledger.New(),
		logger: logger,
		settle: detailSettle,
	}
}

// Ledger exposes the dedup ledger for operator-level actions, such as a
// full-rescan reset between runs.
func (o *Orchestrator) Ledger() *ledger.Ledger {
	return o.ledger
}

// Start begins a run and returns the decision stream. The channel closes
// when the run ends; Err reports any run-level failure afterwards. At most
// one run may be in flight per orchestrator.
func (o *Orchestrator) Start(ctx context.Context, surface browser.Surface) (<-chan candidate.Decision, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.cancel = cancel
	o.runErr = nil
	o.mu.Unlock()

	out := make(chan candidate.Decision, 16)

	go func() {
		defer close(out)
		defer cancel()
		defer o.running.Store(false)

		err := o.run(runCtx, surface, out)
		if err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("screening run failed", zap.Error(err))
			o.mu.Lock()
			o.runErr = err
			o.mu.Unlock()
			return
		}
		o.logger.Info("screening run finished",
			zap.Int("processed", o.ledger.Len()),
		)
	}()

	return out, nil
}

// Stop requests cooperative cancellation. The in-flight candidate is
// abandoned without a decision; the stream closes shortly after.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// DetailActive reports whether the run is currently inside a detail
// sub-flow. Status-only; the run loop itself never consults it.
func (o *Orchestrator) DetailActive() bool {
	return o.detailActive.Load()
}

// Err reports the run-level failure of the last run, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runErr
}

func (o *Orchestrator) run(ctx context.Context, surface browser.Surface, out chan<- candidate.Decision) error {
	unknownPolls := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cls, err := o.deps.Classifier.Classify(ctx, surface)
		if err != nil {
			return fmt.Errorf("surface unusable: %w", err)
		}

		switch cls.Kind {
		case pageclass.ListPage:
			return o.runList(ctx, cls.Surface, out)
		case pageclass.DetailPage:
			// Landed directly on a single candidate's page.
			o.processDetailPage(ctx, cls.Surface, out)
			return nil
		default:
			unknownPolls++
			if unknownPolls >= maxUnknownPolls {
				o.logger.Info("no recognizable page, ending run")
				return nil
			}
			o.logger.Debug("page not recognized yet, re-polling",
				zap.Int("attempt", unknownPolls),
			)
			if err := utils.WaitFor(ctx, classifyPollDelay); err != nil {
				return err
			}
		}
	}
}

// runList is the main loop: process every visible card in DOM order, then
// reveal more until the list is exhausted.
func (o *Orchestrator) runList(ctx context.Context, surface browser.Surface, out chan<- candidate.Decision) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cards, err := surface.FindAll(ctx, o.deps.CardSelector)
		if err != nil {
			return fmt.Errorf("enumerating cards: %w", err)
		}

		for _, el := range cards {
			if err := ctx.Err(); err != nil {
				return err
			}
			o.processCard(ctx, surface, el, out)
		}

		more, err := o.deps.Paginator.RevealMore(ctx, surface)
		if err != nil {
			return err
		}
		if !more {
			o.logger.Info("candidate list exhausted")
			return nil
		}
	}
}
