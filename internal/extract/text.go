package extract

import (
	"regexp"
	"strings"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
)

// Pure text parsing shared by the fallback strategies. Everything here works
// on normalized text only, so fixtures are plain strings.

var (
	// namePattern matches a leading CJK name of 2-4 characters on its own
	// line or followed by separators.
	namePattern = regexp.MustCompile(`^\s*([\p{Han}]{2,4})(?:\s|$)`)

	// positionPattern matches an expected-position line such as
	// "期望：游戏策划" or "期望职位 海外市场策划".
	positionPattern = regexp.MustCompile(`期望(?:职位|岗位)?[:：\s]+([^\n，,、]+)`)

	// companyMarkers end or qualify an employer name.
	companyMarkers = []string{"公司", "集团", "科技", "网络", "信息", "工作室", "studio", "inc", "ltd"}

	// schoolMarkers qualify an education entry.
	schoolMarkers = []string{"大学", "学院", "学校", "university", "college", "institute"}

	whitespaceRun = regexp.MustCompile(`[ \t]+`)
)

// NormalizeText collapses whitespace runs and trims each line, keeping line
// structure because section parsing is line oriented.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// parseCardText derives a record from a card's normalized text block.
func parseCardText(text string) *candidate.Record {
	text = NormalizeText(text)

	rec := &candidate.Record{FullText: text}
	if text == "" {
		return rec
	}

	lines := strings.Split(text, "\n")

	if m := namePattern.FindStringSubmatch(lines[0]); m != nil {
		rec.Name = m[1]
	}

	if m := positionPattern.FindStringSubmatch(text); m != nil {
		rec.Position = strings.TrimSpace(m[1])
	}

	rec.Companies = ParseCompanies(text)
	rec.Schools = ParseSchools(text)
	rec.Skills = ParseSkills(lines)

	return rec
}

// ParseCompanies collects employer-looking tokens from the text, resume order
// preserved.
func ParseCompanies(text string) []string {
	return collectMarked(text, companyMarkers)
}

// ParseSchools collects education-looking tokens from the text.
func ParseSchools(text string) []string {
	return collectMarked(text, schoolMarkers)
}

// ParseSkills reads short comma/slash separated tag lines as skills. Tag
// lines are short and dense with separators; prose lines are neither.
func ParseSkills(lines []string) []string {
	var skills []string
	seen := make(map[string]struct{})

	for _, line := range lines {
		if len([]rune(line)) > 40 {
			continue
		}
		parts := splitTags(line)
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" || len([]rune(part)) > 12 {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			skills = append(skills, part)
		}
	}
	return skills
}

func splitTags(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ',', '，', '、', '/', '|', '·':
			return true
		}
		return false
	})
}

func collectMarked(text string, markers []string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		for _, token := range splitTokens(line) {
			lower := strings.ToLower(token)
			for _, marker := range markers {
				if !strings.Contains(lower, marker) {
					continue
				}
				if _, ok := seen[token]; ok {
					break
				}
				seen[token] = struct{}{}
				out = append(out, token)
				break
			}
		}
	}
	return out
}

func splitTokens(line string) []string {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', ',', '，', '、', ';', '；', '|':
			return true
		}
		return false
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
