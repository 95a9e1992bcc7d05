package config

import "strings"

// Mode is the effective stage-3 evaluation mode, derived once at load time
// rather than re-inferred at each call site.
type Mode int

const (
	// ModeUnconfigured means neither keyword rules nor AI criteria are
	// present; stage 3 auto-passes.
	ModeUnconfigured Mode = iota
	// ModeKeyword scores candidates against the enabled keyword rules.
	ModeKeyword
	// ModeAI submits candidates to the external scoring service.
	ModeAI
)

func (m Mode) String() string {
	switch m {
	case ModeKeyword:
		return "keyword"
	case ModeAI:
		return "ai"
	default:
		return "unconfigured"
	}
}

// EffectiveMode returns the evaluation mode computed by Finalize.
func (c *Config) EffectiveMode() Mode {
	if c == nil {
		return ModeUnconfigured
	}
	return c.mode
}

func (c *Config) deriveMode() Mode {
	if c.AIEnabled() && c.hasAICriteria() {
		return ModeAI
	}
	if len(c.FlattenKeywords(RuleKeyword)) > 0 {
		return ModeKeyword
	}
	return ModeUnconfigured
}

func (c *Config) hasAICriteria() bool {
	if c.AI == nil {
		return false
	}
	if strings.TrimSpace(c.AI.FilterCriteria) != "" {
		return true
	}
	return strings.TrimSpace(c.AI.JobDescription) != "" && strings.TrimSpace(c.AI.TalentProfile) != ""
}
