// Package extract produces candidate records from list cards and detail
// surfaces. Extraction runs a prioritized chain of strategies: structured
// selectors first, regex over normalized text as a fallback. Each strategy
// is independently testable against literal text fixtures.
package extract

import (
	"context"
	"errors"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"go.uber.org/zap"
)

// ErrInsufficient is returned when no strategy produced a usable record.
// It is fatal only for the single candidate, never for the run.
var ErrInsufficient = errors.New("extract: no usable candidate data")

// CardStrategy extracts a record from one list-card element.
type CardStrategy interface {
	Name() string
	Extract(ctx context.Context, el browser.Element) (*candidate.Record, error)
}

// DetailStrategy extracts a record from a detail surface.
type DetailStrategy interface {
	Name() string
	Extract(ctx context.Context, surface browser.Surface) (*candidate.Record, error)
}

// CardExtractor runs card strategies in order until one yields a usable
// record.
type CardExtractor struct {
	strategies []CardStrategy
	logger     *zap.Logger
}

// NewCardExtractor builds the default chain: structured selectors, then the
// normalized-text fallback.
func NewCardExtractor(logger *zap.Logger) *CardExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardExtractor{
		strategies: []CardStrategy{
			&cardSelectorStrategy{},
			&cardTextStrategy{},
		},
		logger: logger,
	}
}

// Extract returns the first usable record produced by the chain.
func (e *CardExtractor) Extract(ctx context.Context, el browser.Element) (*candidate.Record, error) {
	for _, strategy := range e.strategies {
		rec, err := strategy.Extract(ctx, el)
		if err != nil {
			e.logger.Debug("card strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			continue
		}
		if rec.Usable() {
			rec.Source = candidate.SourceCard
			return rec, nil
		}
	}
	return nil, ErrInsufficient
}

// DetailExtractor runs detail strategies in order until one yields a usable
// record.
type DetailExtractor struct {
	strategies []DetailStrategy
	logger     *zap.Logger
}

func NewDetailExtractor(logger *zap.Logger) *DetailExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailExtractor{
		strategies: []DetailStrategy{
			&detailSelectorStrategy{},
			&detailTextStrategy{},
		},
		logger: logger,
	}
}

func (e *DetailExtractor) Extract(ctx context.Context, surface browser.Surface) (*candidate.Record, error) {
	for _, strategy := range e.strategies {
		rec, err := strategy.Extract(ctx, surface)
		if err != nil {
			e.logger.Debug("detail strategy failed",
				zap.String("strategy", strategy.Name()),
				zap.Error(err),
			)
			continue
		}
		if rec.Usable() {
			rec.Source = candidate.SourceDetail
			return rec, nil
		}
	}
	return nil, ErrInsufficient
}
