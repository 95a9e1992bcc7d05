// Package evaluate implements stage 3, the deep evaluator. Depending on the
// run config it scores candidates against keyword rules or submits them to an
// external scoring service. Scoring-service failures never propagate: they
// degrade to a fail-open passing result (see failopen.go).
package evaluate

import (
	"context"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/logger"
	"go.uber.org/zap"
)

// scoreTimeout bounds one scoring-service round trip. On expiry the call is
// treated as the documented fail-open failure case, not left pending.
const scoreTimeout = 30 * time.Second

// noCriteriaScore is returned when neither keyword rules nor AI criteria are
// configured.
const noCriteriaScore = 80

// defaultRawLogLimit caps how much of a raw scoring response reaches the
// debug log when the config does not set its own limit.
const defaultRawLogLimit = 500

// ScoringService is the external scoring collaborator. It returns the raw
// model text; parsing is the evaluator's job.
type ScoringService interface {
	Score(ctx context.Context, prompt string) (string, error)
}

// Evaluator runs stage 3.
type Evaluator struct {
	scorer ScoringService
	logger *zap.Logger
}

func New(scorer ScoringService, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{scorer: scorer, logger: logger}
}

// Evaluate produces an EvaluationResult for the candidate. It never returns
// an error: keyword scoring is local, AI failures fail open, and an
// unconfigured run auto-passes.
func (e *Evaluator) Evaluate(ctx context.Context, rec *candidate.Record, cfg *config.Config) *candidate.EvaluationResult {
	switch cfg.EffectiveMode() {
	case config.ModeAI:
		return e.evaluateAI(ctx, rec, cfg)
	case config.ModeKeyword:
		return evaluateKeywords(rec, cfg)
	default:
		return &candidate.EvaluationResult{
			Score:  noCriteriaScore,
			Passed: true,
			Reason: "no criteria configured",
		}
	}
}

func (e *Evaluator) evaluateAI(ctx context.Context, rec *candidate.Record, cfg *config.Config) *candidate.EvaluationResult {
	if e.scorer == nil {
		return ToFailOpenDefault(errNoScorer)
	}

	prompt := BuildPrompt(rec, cfg)

	scoreCtx, cancel := context.WithTimeout(ctx, scoreTimeout)
	defer cancel()

	raw, err := e.scorer.Score(scoreCtx, prompt)
	if err != nil {
		e.logger.Warn("scoring service failed, failing open",
			zap.String("candidate_id", rec.ID),
			zap.Error(err),
		)
		return ToFailOpenDefault(err)
	}

	e.logger.Debug("scoring response received",
		zap.String("candidate_id", rec.ID),
		zap.String("raw", logger.TruncateForLog(raw, rawLogLimit(cfg))),
	)

	result, err := ParseResponse(raw, cfg.PassScore)
	if err != nil {
		e.logger.Warn("scoring response unparseable, failing open",
			zap.String("candidate_id", rec.ID),
			zap.String("raw", logger.TruncateForLog(raw, rawLogLimit(cfg))),
			zap.Error(err),
		)
		return ToFailOpenDefault(err)
	}

	e.logger.Debug("ai evaluation",
		zap.String("candidate_id", rec.ID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed),
	)

	return result
}

// rawLogLimit resolves the configured cap on logged raw responses.
func rawLogLimit(cfg *config.Config) int {
	if cfg.AI != nil && cfg.AI.Gemini != nil && cfg.AI.Gemini.MaxLogLength > 0 {
		return cfg.AI.Gemini.MaxLogLength
	}
	return defaultRawLogLimit
}
