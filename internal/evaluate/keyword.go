package evaluate

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
)

// fuzzyThreshold is the partial-similarity score a keyword must reach in
// some corpus field to count as matched when no direct substring hit exists.
const fuzzyThreshold = 0.9

// maxFuzzyField caps the sliding-window comparison; extracted full text can
// run long and similarity beyond that length adds nothing.
const maxFuzzyField = 2000

// evaluateKeywords scores the candidate against the enabled keyword rules:
// score = matched/total * 100, clamped to [0,100].
func evaluateKeywords(rec *candidate.Record, cfg *config.Config) *candidate.EvaluationResult {
	entries := cfg.FlattenKeywords(config.RuleKeyword)
	if len(entries) == 0 {
		return &candidate.EvaluationResult{
			Score:  noCriteriaScore,
			Passed: true,
			Reason: "no keyword rules configured",
		}
	}

	corpus := rec.Corpus()

	var matched, missed []string
	for _, entry := range entries {
		if entryMatches(entry, corpus) {
			matched = append(matched, strings.Join(entry.Terms(), "+"))
		} else {
			missed = append(missed, strings.Join(entry.Terms(), "+"))
		}
	}

	score := len(matched) * 100 / len(entries)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	passScore := keywordPassScore(cfg)
	passed := score >= passScore

	return &candidate.EvaluationResult{
		Score:      score,
		Passed:     passed,
		Reason:     fmt.Sprintf("matched %d/%d keywords", len(matched), len(entries)),
		Highlights: matched,
		Concerns:   missed,
	}
}

// keywordPassScore prefers a threshold configured on a keyword rule over the
// run-wide default.
func keywordPassScore(cfg *config.Config) int {
	for _, rule := range cfg.EnabledRules(config.RuleKeyword) {
		if rule.PassScore > 0 {
			return rule.PassScore
		}
	}
	return cfg.PassScore
}

// entryMatches requires every term of an AND-group to match somewhere in the
// corpus.
func entryMatches(entry config.KeywordEntry, corpus []string) bool {
	terms := entry.Terms()
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !termMatches(term, corpus) {
			return false
		}
	}
	return true
}

func termMatches(term string, corpus []string) bool {
	lowerTerm := strings.ToLower(term)
	for _, field := range corpus {
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	for _, field := range corpus {
		if partialSimilarity(lowerTerm, strings.ToLower(field)) >= fuzzyThreshold {
			return true
		}
	}
	return false
}

// partialSimilarity slides a keyword-sized window across the field and
// returns the best Levenshtein similarity, so a near-miss inside a longer
// field still counts.
func partialSimilarity(term, field string) float64 {
	termRunes := []rune(term)
	fieldRunes := []rune(field)

	if len(fieldRunes) > maxFuzzyField {
		fieldRunes = fieldRunes[:maxFuzzyField]
	}

	if len(termRunes) == 0 || len(fieldRunes) == 0 {
		return 0
	}

	if len(fieldRunes) <= len(termRunes) {
		return levenshtein.Similarity(term, string(fieldRunes), nil)
	}

	best := 0.0
	for i := 0; i+len(termRunes) <= len(fieldRunes); i++ {
		window := string(fieldRunes[i : i+len(termRunes)])
		if s := levenshtein.Similarity(term, window, nil); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}
