package evaluate

import (
	"testing"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
)

func keywordConfig(t *testing.T, passScore int, entries ...config.KeywordEntry) *config.Config {
	t.Helper()
	cfg := &config.Config{
		PassScore: passScore,
		Rules: []config.Rule{{
			Type:     config.RuleKeyword,
			Enabled:  true,
			Keywords: entries,
		}},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestKeywordScoreProportional(t *testing.T) {
	t.Parallel()

	cfg := keywordConfig(t, 60,
		config.KeywordEntry{"golang"},
		config.KeywordEntry{"kubernetes"},
		config.KeywordEntry{"rust"},
		config.KeywordEntry{"redis"},
	)

	rec := &candidate.Record{
		ID:       "c1",
		Position: "后端工程师",
		Skills:   []string{"Golang", "Redis"},
		FullText: "负责 kubernetes 集群运维",
	}

	result := evaluateKeywords(rec, cfg)

	if result.Score != 75 {
		t.Fatalf("expected 3/4 = 75, got %d", result.Score)
	}
	if !result.Passed {
		t.Fatalf("75 >= 60 must pass")
	}
	if len(result.Highlights) != 3 || len(result.Concerns) != 1 {
		t.Fatalf("unexpected highlights/concerns: %+v", result)
	}
}

func TestKeywordScoreBelowThresholdFails(t *testing.T) {
	t.Parallel()

	cfg := keywordConfig(t, 60,
		config.KeywordEntry{"golang"},
		config.KeywordEntry{"rust"},
	)

	rec := &candidate.Record{ID: "c1", Skills: []string{"golang"}}

	result := evaluateKeywords(rec, cfg)
	if result.Score != 50 || result.Passed {
		t.Fatalf("expected failing 50, got %+v", result)
	}
}

func TestKeywordRulePassScoreOverridesDefault(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		PassScore: 90,
		Rules: []config.Rule{{
			Type:      config.RuleKeyword,
			Enabled:   true,
			PassScore: 40,
			Keywords:  []config.KeywordEntry{{"golang"}, {"rust"}},
		}},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	rec := &candidate.Record{ID: "c1", Skills: []string{"golang"}}

	result := evaluateKeywords(rec, cfg)
	if !result.Passed {
		t.Fatalf("rule pass-score 40 must accept 50, got %+v", result)
	}
}

func TestKeywordFuzzyPartialMatch(t *testing.T) {
	t.Parallel()

	cfg := keywordConfig(t, 60, config.KeywordEntry{"microservices"})

	// One-character typo inside a longer field still counts.
	rec := &candidate.Record{ID: "c1", FullText: "built microservises with go in production"}

	result := evaluateKeywords(rec, cfg)
	if result.Score != 100 {
		t.Fatalf("expected fuzzy hit, got %+v", result)
	}
}

func TestKeywordANDGroupRequiresAllTerms(t *testing.T) {
	t.Parallel()

	cfg := keywordConfig(t, 60, config.KeywordEntry{"golang", "kafka"})

	rec := &candidate.Record{ID: "c1", Skills: []string{"golang"}}
	if result := evaluateKeywords(rec, cfg); result.Score != 0 {
		t.Fatalf("partial AND-group must not count, got %+v", result)
	}

	rec = &candidate.Record{ID: "c1", Skills: []string{"golang", "kafka"}}
	if result := evaluateKeywords(rec, cfg); result.Score != 100 {
		t.Fatalf("complete AND-group must count, got %+v", result)
	}
}

func TestPartialSimilarityBounds(t *testing.T) {
	t.Parallel()

	if got := partialSimilarity("", "anything"); got != 0 {
		t.Fatalf("empty term must score 0, got %f", got)
	}
	if got := partialSimilarity("abc", ""); got != 0 {
		t.Fatalf("empty field must score 0, got %f", got)
	}
	if got := partialSimilarity("abc", "abc"); got != 1 {
		t.Fatalf("identical strings must score 1, got %f", got)
	}
}
