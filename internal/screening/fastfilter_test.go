package screening

import (
	"testing"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"go.uber.org/zap"
)

func finalized(t *testing.T, cfg *config.Config) *config.Config {
	t.Helper()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}
	return cfg
}

func TestFastFilterSkipsOnMustMatchMismatch(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{Rules: []config.Rule{{
		Type:      config.RulePosition,
		Enabled:   true,
		MustMatch: true,
		Keywords:  []config.KeywordEntry{{"策划"}},
	}}})

	rec := &candidate.Record{ID: "c1", Position: "前端工程师", FullText: "前端工程师 三年经验"}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Skip {
		t.Fatalf("expected skip, got %s", result.Verdict)
	}
	if result.Reason != "position mismatch" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestFastFilterSoftRulePassesOnMismatch(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{Rules: []config.Rule{{
		Type:     config.RulePosition,
		Enabled:  true,
		Keywords: []config.KeywordEntry{{"策划"}},
	}}})

	rec := &candidate.Record{ID: "c1", Position: "前端工程师"}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Continue {
		t.Fatalf("soft rule mismatch must continue, got %s", result.Verdict)
	}
}

func TestFastFilterRetriesAgainstFullText(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{Rules: []config.Rule{{
		Type:      config.RulePosition,
		Enabled:   true,
		MustMatch: true,
		Keywords:  []config.KeywordEntry{{"策划"}},
	}}})

	// Position field is empty but the full text carries the keyword.
	rec := &candidate.Record{ID: "c1", FullText: "海外市场策划专员 五年经验"}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Continue {
		t.Fatalf("expected full-text retry to pass, got %s", result.Verdict)
	}
}

func TestFastFilterDisqualifyingPrefixSkips(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{Rules: []config.Rule{{
		Type:      config.RulePosition,
		Enabled:   true,
		MustMatch: true,
		Keywords:  []config.KeywordEntry{{"策划"}},
	}}})

	rec := &candidate.Record{ID: "c1", Position: "美术原画策划", FullText: "美术原画策划"}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Skip {
		t.Fatalf("disqualified prefix must skip, got %s", result.Verdict)
	}
}

func TestFastFilterEmptyKeywordsAutoPass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: "ai mode subsumes position relevance",
			cfg: &config.Config{AI: &config.AIConfig{
				Enabled:        true,
				FilterCriteria: "资深策划",
			}},
		},
		{
			name: "fail-open default without ai",
			cfg:  &config.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := finalized(t, tt.cfg)
			rec := &candidate.Record{ID: "c1", Position: "任何职位"}
			result := New(zap.NewNop()).Apply(rec, cfg)
			if result.Verdict != Continue {
				t.Fatalf("empty stage-1 keywords must auto-pass, got %s", result.Verdict)
			}
		})
	}
}

func TestFastFilterTargetPositionActsAsKeyword(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{AI: &config.AIConfig{
		Enabled:        true,
		FilterCriteria: "x",
		TargetPosition: "策划",
	}})

	rec := &candidate.Record{ID: "c1", Position: "游戏策划"}
	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Continue {
		t.Fatalf("expected target position to match, got %s", result.Verdict)
	}
}

func TestFastFilterCompetitorFastPass(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{
		CompetitorCompanies: []string{"米哈游"},
	})

	rec := &candidate.Record{
		ID:        "c1",
		Position:  "游戏策划",
		Companies: []string{"上海米哈游网络科技"},
	}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != FastPassGreet {
		t.Fatalf("expected competitor fast pass, got %s", result.Verdict)
	}
	if result.Reason == "" {
		t.Fatalf("fast pass must carry a reason")
	}
}

func TestFastFilterCompetitorCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg := finalized(t, &config.Config{Rules: []config.Rule{{
		Type:     config.RuleCompany,
		Enabled:  true,
		Keywords: []config.KeywordEntry{{"MiHoYo"}},
	}}})

	rec := &candidate.Record{ID: "c1", Companies: []string{"mihoyo shanghai"}}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != FastPassGreet {
		t.Fatalf("expected case-insensitive competitor hit, got %s", result.Verdict)
	}
}

func TestFastFilterSkipBeatsFastPass(t *testing.T) {
	t.Parallel()

	// A candidate failing a must-match position rule is skipped even when a
	// competitor company is present: stage 1 runs first.
	cfg := finalized(t, &config.Config{
		Rules: []config.Rule{{
			Type:      config.RulePosition,
			Enabled:   true,
			MustMatch: true,
			Keywords:  []config.KeywordEntry{{"策划"}},
		}},
		CompetitorCompanies: []string{"米哈游"},
	})

	rec := &candidate.Record{
		ID:        "c1",
		Position:  "前端工程师",
		Companies: []string{"米哈游"},
	}

	result := New(zap.NewNop()).Apply(rec, cfg)
	if result.Verdict != Skip {
		t.Fatalf("stage 1 skip must run before stage 2, got %s", result.Verdict)
	}
}
