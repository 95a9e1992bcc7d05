package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// DefaultPassScore is used when the config does not set a threshold.
	DefaultPassScore = 60
)

// RuleType enumerates the supported matching criteria.
type RuleType string

const (
	RulePosition  RuleType = "position"
	RuleCompany   RuleType = "company"
	RuleKeyword   RuleType = "keyword"
	RuleSchool    RuleType = "school"
	RuleEducation RuleType = "education"
)

// KeywordEntry is one entry of a rule's keyword list. A single-term entry
// matches on its own; a multi-term entry is an AND-group, every term must
// match independently.
type KeywordEntry []string

// Terms returns the entry's terms with whitespace trimmed and empties dropped.
func (e KeywordEntry) Terms() []string {
	terms := make([]string, 0, len(e))
	for _, term := range e {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// Rule is a configured matching criterion.
type Rule struct {
	Type       RuleType       `mapstructure:"type" yaml:"type"`
	Keywords   []KeywordEntry `mapstructure:"keywords" yaml:"keywords"`
	MustMatch  bool           `mapstructure:"must-match" yaml:"must-match"`
	Enabled    bool           `mapstructure:"enabled" yaml:"enabled"`
	Importance int            `mapstructure:"importance" yaml:"importance"`
	Order      int            `mapstructure:"order" yaml:"order"`
	// PassScore is only meaningful for keyword rules.
	PassScore int `mapstructure:"pass-score" yaml:"pass-score"`
}

// AIConfig holds the scoring-service configuration.
type AIConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Provider       string        `mapstructure:"provider"`
	JobDescription string        `mapstructure:"job-description"`
	TalentProfile  string        `mapstructure:"talent-profile"`
	FilterCriteria string        `mapstructure:"filter-criteria"`
	TargetPosition string        `mapstructure:"target-position"`
	Gemini         *GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig stores Gemini provider settings.
type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// Config is the immutable per-run snapshot consumed by the pipeline.
// It is loaded once per run and never mutated by the orchestrator.
type Config struct {
	Rules []Rule `mapstructure:"rules"`

	AutoMode bool `mapstructure:"auto-mode"`

	// CompetitorCompanies are appended to the company-rule keywords for the
	// stage-2 fast pass.
	CompetitorCompanies []string `mapstructure:"competitor-companies"`

	PassScore int `mapstructure:"pass-score"`

	GreetMessage string `mapstructure:"greet-message"`

	// UnrelatedPrefixesFile optionally replaces the built-in
	// disqualifying-prefix table for precise position matching.
	UnrelatedPrefixesFile string `mapstructure:"unrelated-prefixes-file"`

	AI *AIConfig `mapstructure:"ai"`

	mode Mode
}

// AIEnabled reports whether the scoring service is configured for this run.
func (c *Config) AIEnabled() bool {
	return c != nil && c.AI != nil && c.AI.Enabled
}

// TargetPosition returns the externally configured desired role, if any.
func (c *Config) TargetPosition() string {
	if c == nil || c.AI == nil {
		return ""
	}
	return strings.TrimSpace(c.AI.TargetPosition)
}

// EnabledRules returns the enabled rules of the given type in configured order.
func (c *Config) EnabledRules(t RuleType) []Rule {
	if c == nil {
		return nil
	}

	rules := make([]Rule, 0, len(c.Rules))
	for _, rule := range c.Rules {
		if rule.Enabled && rule.Type == t {
			rules = append(rules, rule)
		}
	}

	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Order < rules[j].Order })
	return rules
}

// FlattenKeywords collects every keyword entry of the enabled rules of the
// given type, preserving rule order.
func (c *Config) FlattenKeywords(t RuleType) []KeywordEntry {
	var entries []KeywordEntry
	for _, rule := range c.EnabledRules(t) {
		for _, entry := range rule.Keywords {
			if len(entry.Terms()) == 0 {
				continue
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// Finalize applies defaults and computes the effective evaluation mode once.
// It must be called after decoding and before the config is handed to the
// pipeline.
func (c *Config) Finalize() error {
	if c == nil {
		return fmt.Errorf("config is required")
	}

	if c.PassScore <= 0 {
		c.PassScore = DefaultPassScore
	}
	if c.PassScore > 100 {
		return fmt.Errorf("pass-score must be within [1,100], got %d", c.PassScore)
	}

	for i, rule := range c.Rules {
		if rule.Type == "" {
			return fmt.Errorf("rule %d: type is required", i)
		}
		switch rule.Type {
		case RulePosition, RuleCompany, RuleKeyword, RuleSchool, RuleEducation:
		default:
			return fmt.Errorf("rule %d: unknown type %q", i, rule.Type)
		}
	}

	c.mode = c.deriveMode()
	return nil
}

// KeywordEntryHook decodes a bare string keyword into a single-term entry so
// config files may write either "golang" or ["golang", "后端"].
func KeywordEntryHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(KeywordEntry(nil)) {
			return data, nil
		}
		if s, ok := data.(string); ok {
			return KeywordEntry{s}, nil
		}
		return data, nil
	}
}

// Decode builds a Config from a generic map (e.g. a viper sub-tree) using the
// keyword entry hook, then finalizes it.
func Decode(raw map[string]any) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &cfg,
		DecodeHook: KeywordEntryHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
