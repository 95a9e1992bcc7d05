package screening

import (
	"fmt"
	"strings"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"go.uber.org/zap"
)

// Verdict is the fast-filter outcome.
type Verdict int

const (
	// Continue hands the candidate to the deep evaluator.
	Continue Verdict = iota
	// Skip terminates the candidate without stage 3.
	Skip
	// FastPassGreet greets immediately, bypassing stage 3 entirely.
	FastPassGreet
)

func (v Verdict) String() string {
	switch v {
	case Skip:
		return "skip"
	case FastPassGreet:
		return "fast_pass_greet"
	default:
		return "continue"
	}
}

// Result carries the verdict and its reason.
type Result struct {
	Verdict Verdict
	Reason  string
}

// FastFilter runs stage 1 (position) then stage 2 (competitor company).
// Pure function over its inputs, no side effects beyond logging.
type FastFilter struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *FastFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FastFilter{logger: logger}
}

// Apply returns Skip, FastPassGreet, or Continue for the candidate.
func (f *FastFilter) Apply(rec *candidate.Record, cfg *config.Config) Result {
	if result := f.stagePosition(rec, cfg); result.Verdict == Skip {
		return result
	}

	if result := f.stageCompany(rec, cfg); result.Verdict == FastPassGreet {
		return result
	}

	return Result{Verdict: Continue}
}

// stagePosition checks the candidate's stated role against the enabled
// position rules plus the externally configured target position.
func (f *FastFilter) stagePosition(rec *candidate.Record, cfg *config.Config) Result {
	entries := cfg.FlattenKeywords(config.RulePosition)

	if target := cfg.TargetPosition(); target != "" {
		entries = append(entries, config.KeywordEntry{target})
	}

	if len(entries) == 0 {
		if cfg.EffectiveMode() == config.ModeAI {
			// AI scoring subsumes position relevance.
			return Result{Verdict: Continue}
		}
		f.logger.Warn("no position keywords configured, stage 1 auto-passes",
			zap.String("candidate_id", rec.ID),
		)
		return Result{Verdict: Continue}
	}

	matched, ok := MatchAnyEntry(rec.Position, entries)
	if !ok {
		// Retry against the full-surface text: card extraction frequently
		// misses the expectation line.
		matched, ok = MatchAnyEntry(rec.FullText, entries)
	}

	if ok {
		f.logger.Debug("position matched",
			zap.String("candidate_id", rec.ID),
			zap.Strings("keywords", matched),
		)
		return Result{Verdict: Continue}
	}

	if mustMatch(cfg.EnabledRules(config.RulePosition)) {
		return Result{Verdict: Skip, Reason: "position mismatch"}
	}

	// Soft rules: no match, no veto.
	return Result{Verdict: Continue}
}

// stageCompany fast-passes candidates whose employer list hits a configured
// competitor keyword. Competitor hires bypass stage 3 unconditionally.
func (f *FastFilter) stageCompany(rec *candidate.Record, cfg *config.Config) Result {
	var terms []string
	for _, entry := range cfg.FlattenKeywords(config.RuleCompany) {
		terms = append(terms, entry.Terms()...)
	}
	for _, c := range cfg.CompetitorCompanies {
		if c = strings.TrimSpace(c); c != "" {
			terms = append(terms, c)
		}
	}

	if len(terms) == 0 || len(rec.Companies) == 0 {
		return Result{Verdict: Continue}
	}

	for _, company := range rec.Companies {
		lower := strings.ToLower(company)
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return Result{
					Verdict: FastPassGreet,
					Reason:  fmt.Sprintf("competitor company: %s", company),
				}
			}
		}
	}

	return Result{Verdict: Continue}
}

func mustMatch(rules []config.Rule) bool {
	for _, rule := range rules {
		if rule.MustMatch {
			return true
		}
	}
	return false
}
