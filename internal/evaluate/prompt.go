package evaluate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
)

//go:embed prompt.md
var promptTemplate string

const (
	resultPass = "通过"
	resultFail = "不通过"
)

// BuildPrompt renders the scoring prompt: an explicit filter-criteria block
// when configured, otherwise the job description + talent profile pair, plus
// the candidate's corpus.
func BuildPrompt(rec *candidate.Record, cfg *config.Config) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{CRITERIA}}", criteriaBlock(cfg))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE}}", candidateBlock(rec))
	return prompt
}

func criteriaBlock(cfg *config.Config) string {
	if cfg == nil || cfg.AI == nil {
		return "无"
	}

	if criteria := strings.TrimSpace(cfg.AI.FilterCriteria); criteria != "" {
		return criteria
	}

	var b strings.Builder
	if jd := strings.TrimSpace(cfg.AI.JobDescription); jd != "" {
		b.WriteString("岗位描述：\n")
		b.WriteString(jd)
		b.WriteString("\n")
	}
	if profile := strings.TrimSpace(cfg.AI.TalentProfile); profile != "" {
		b.WriteString("人才画像：\n")
		b.WriteString(profile)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "无"
	}
	return strings.TrimSpace(b.String())
}

func candidateBlock(rec *candidate.Record) string {
	if rec == nil {
		return ""
	}

	var b strings.Builder
	writeLine := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fmt.Fprintf(&b, "%s：%s\n", label, value)
		}
	}

	writeLine("姓名", rec.Name)
	writeLine("期望职位", rec.Position)
	writeLine("工作经历", strings.Join(rec.Companies, "、"))
	writeLine("教育经历", strings.Join(rec.Schools, "、"))
	writeLine("技能标签", strings.Join(rec.Skills, "、"))
	writeLine("简历全文", rec.FullText)

	return strings.TrimSpace(b.String())
}

// ParseResponse decodes the scoring service's constrained JSON object,
// tolerating fenced-code-block wrapping. passScore backs the passed flag
// when the result field is absent.
func ParseResponse(raw string, passScore int) (*candidate.EvaluationResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	score := clampScore(coerceInt(data["score"]))
	reason := coerceString(data["reason"])

	var passed bool
	switch coerceString(data["result"]) {
	case resultPass:
		passed = true
	case resultFail:
		passed = false
	default:
		passed = score >= passScore
	}

	return &candidate.EvaluationResult{
		Score:      score,
		Passed:     passed,
		Reason:     reason,
		Highlights: coerceStrings(data["highlights"]),
		Concerns:   coerceStrings(data["concerns"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
