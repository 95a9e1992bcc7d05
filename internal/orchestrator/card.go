package orchestrator

import (
	"context"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/extract"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/logger"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/pageclass"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/screening"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/utils"
	"go.uber.org/zap"
)

// processCard runs the full stage pipeline for one card. Failures here are
// fatal for the card only; the run continues with the next one.
func (o *Orchestrator) processCard(ctx context.Context, surface browser.Surface, el browser.Element, out chan<- candidate.Decision) {
	rec, err := o.deps.Cards.Extract(ctx, el)
	if err != nil {
		// Nothing usable from the card. Mark whatever id we can derive
		// so the card is not retried on every re-render.
		if id := extract.CardID(ctx, el); id != "" {
			o.ledger.Mark(id)
		}
		o.logger.Warn("card extraction failed, skipping card", zap.Error(err))
		return
	}

	if o.ledger.Seen(rec.ID) {
		o.logger.Debug("already processed", logger.CandidateFields(rec.ID, "dedup")...)
		return
	}

	if rec.Degraded() {
		o.logger.Warn("continuing with degraded candidate data",
			logger.CandidateFields(rec.ID, "extract")...)
	}

	result := o.deps.Filter.Apply(rec, o.cfg)
	switch result.Verdict {
	case screening.Skip:
		o.record(ctx, rec, candidate.ActionSkip, result.Reason, nil, out)
	case screening.FastPassGreet:
		o.greetAndRecord(ctx, surface, rec, result.Reason, nil, out)
	default:
		o.deepEvaluate(ctx, surface, el, rec, out)
	}
}

// deepEvaluate visits the detail page when possible, merges what it finds
// into the card record, and runs stage 3.
func (o *Orchestrator) deepEvaluate(ctx context.Context, surface browser.Surface, el browser.Element, rec *candidate.Record, out chan<- candidate.Decision) {
	merged := o.withDetail(ctx, surface, el, rec)

	eval := o.deps.Evaluator.Evaluate(ctx, merged, o.cfg)
	if ctx.Err() != nil {
		// Cancelled mid-evaluation: abandon without a decision.
		return
	}

	if eval.Passed {
		o.greetAndRecord(ctx, surface, merged, eval.Reason, eval, out)
		return
	}
	o.record(ctx, merged, candidate.ActionSkip, eval.Reason, eval, out)
}

// withDetail runs the detail sub-flow: click into the candidate's page,
// extract, merge, and navigate back. Pagination is blocked for the whole
// sub-flow. Any failure falls back to the card-sourced record.
func (o *Orchestrator) withDetail(ctx context.Context, surface browser.Surface, el browser.Element, rec *candidate.Record) *candidate.Record {
	if ctx.Err() != nil {
		return rec
	}

	o.detailActive.Store(true)
	defer o.detailActive.Store(false)

	log := logger.WithFields(o.logger, logger.CandidateFields(rec.ID, "detail")...)

	if err := el.Click(ctx); err != nil {
		log.Debug("card click failed, evaluating card data only", zap.Error(err))
		return rec
	}

	// Back out of the detail context on every exit path so the list loop
	// resumes on the surface it expects.
	defer func() {
		if err := surface.Back(ctx); err != nil {
			log.Warn("returning to list failed", zap.Error(err))
		}
	}()

	if err := utils.WaitFor(ctx, o.settle); err != nil {
		return rec
	}

	cls, err := o.deps.Classifier.Classify(ctx, surface)
	if err != nil || cls.Kind != pageclass.DetailPage {
		return rec
	}

	detail, err := o.deps.Details.Extract(ctx, cls.Surface)
	if err != nil {
		log.Debug("detail extraction failed, using card data", zap.Error(err))
		return rec
	}

	return candidate.Merge(rec, detail)
}

// processDetailPage screens the single candidate shown on a detail page.
func (o *Orchestrator) processDetailPage(ctx context.Context, surface browser.Surface, out chan<- candidate.Decision) {
	rec, err := o.deps.Details.Extract(ctx, surface)
	if err != nil {
		o.logger.Warn("detail extraction failed", zap.Error(err))
		return
	}

	if o.ledger.Seen(rec.ID) {
		return
	}

	result := o.deps.Filter.Apply(rec, o.cfg)
	switch result.Verdict {
	case screening.Skip:
		o.record(ctx, rec, candidate.ActionSkip, result.Reason, nil, out)
	case screening.FastPassGreet:
		o.greetAndRecord(ctx, surface, rec, result.Reason, nil, out)
	default:
		eval := o.deps.Evaluator.Evaluate(ctx, rec, o.cfg)
		if ctx.Err() != nil {
			return
		}
		if eval.Passed {
			o.greetAndRecord(ctx, surface, rec, eval.Reason, eval, out)
		} else {
			o.record(ctx, rec, candidate.ActionSkip, eval.Reason, eval, out)
		}
	}
}

// greetAndRecord performs the contact action and records the greet decision.
// A greet that fails after all click strategies is fatal for the candidate
// only: the id is marked and no decision is emitted.
func (o *Orchestrator) greetAndRecord(ctx context.Context, surface browser.Surface, rec *candidate.Record, reason string, eval *candidate.EvaluationResult, out chan<- candidate.Decision) {
	if ctx.Err() != nil {
		return
	}

	if err := o.deps.Contacter.Greet(ctx, surface, rec); err != nil {
		if ctx.Err() != nil {
			return
		}
		o.ledger.Mark(rec.ID)
		log := logger.WithFields(o.logger, logger.CandidateFields(rec.ID, "greet")...)
		log.Warn("greet failed after all strategies", zap.Error(err))
		return
	}

	o.record(ctx, rec, candidate.ActionGreet, reason, eval, out)
}

// record emits the terminal decision and marks the id, unconditionally,
// even on Skip. A cancelled context suppresses the decision entirely.
func (o *Orchestrator) record(ctx context.Context, rec *candidate.Record, action candidate.Action, reason string, eval *candidate.EvaluationResult, out chan<- candidate.Decision) {
	if ctx.Err() != nil {
		return
	}

	o.ledger.Mark(rec.ID)

	d := candidate.NewDecision(rec, action, reason, eval)

	if o.deps.Sink != nil {
		o.deps.Sink.Record(d)
	}

	o.logger.Info("candidate decided",
		logger.StringFields(
			logger.StringField{Key: logger.FieldCandidate, Value: rec.ID},
			logger.StringField{Key: "candidate_name", Value: rec.Name},
			logger.StringField{Key: logger.FieldAction, Value: string(action)},
			logger.StringField{Key: "reason", Value: reason},
		)...,
	)

	select {
	case out <- d:
	case <-ctx.Done():
	}
}
