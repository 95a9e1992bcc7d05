// Package screening implements the fast filter: stage 1 (position) and
// stage 2 (competitor company). Both stages are pure decision functions over
// a candidate record and the run config.
package screening

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"gopkg.in/yaml.v3"
)

//go:embed prefixes.yaml
var prefixesYAML []byte

var (
	prefixOnce  sync.Once
	prefixTable map[string][]string
)

// unrelatedPrefixes returns the disqualifying-prefix table, keyed by the
// protected keyword term.
func unrelatedPrefixes() map[string][]string {
	prefixOnce.Do(func() {
		prefixTable = map[string][]string{}
		// The embedded table is static; a decode failure would be a build
		// defect and leaves the table empty rather than panicking.
		_ = yaml.Unmarshal(prefixesYAML, &prefixTable)
	})
	return prefixTable
}

// SetUnrelatedPrefixes replaces the prefix table, for site-specific tuning
// via configuration.
func SetUnrelatedPrefixes(table map[string][]string) {
	prefixOnce.Do(func() {})
	prefixTable = table
}

// LoadUnrelatedPrefixes replaces the embedded table with one read from a
// YAML file.
func LoadUnrelatedPrefixes(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading prefix table: %w", err)
	}

	table := map[string][]string{}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parsing prefix table %q: %w", path, err)
	}

	SetUnrelatedPrefixes(table)
	return nil
}

var latinWord = regexp.MustCompile(`^[A-Za-z0-9+#.\- ]+$`)

// PreciseMatch reports whether the keyword matches the text under the
// stage-1 semantics:
//
//   - exact equality passes;
//   - substring containment passes, unless the occurrence is immediately
//     preceded by a disqualifying "unrelated role" prefix (resume text often
//     juxtaposes adjacent but unrelated role fragments, rejecting those is a
//     deliberate precision/recall trade-off);
//   - word-boundary match passes for Latin-script keywords.
func PreciseMatch(text, keyword string) bool {
	text = strings.TrimSpace(text)
	keyword = strings.TrimSpace(keyword)
	if text == "" || keyword == "" {
		return false
	}

	if strings.EqualFold(text, keyword) {
		return true
	}

	if containsOutsidePrefixes(text, keyword) {
		return true
	}

	if latinWord.MatchString(keyword) {
		pattern := `(?i)\b` + regexp.QuoteMeta(keyword) + `\b`
		if matched, err := regexp.MatchString(pattern, text); err == nil && matched {
			return true
		}
	}

	return false
}

// containsOutsidePrefixes scans every occurrence of keyword in text and
// accepts the first one not immediately preceded by a disqualifying prefix.
func containsOutsidePrefixes(text, keyword string) bool {
	lowerText := strings.ToLower(text)
	lowerKeyword := strings.ToLower(keyword)

	prefixes := prefixesFor(keyword)

	offset := 0
	for {
		idx := strings.Index(lowerText[offset:], lowerKeyword)
		if idx < 0 {
			return false
		}
		idx += offset

		if !precededByAny(lowerText[:idx], prefixes) {
			return true
		}

		offset = idx + len(lowerKeyword)
	}
}

func prefixesFor(keyword string) []string {
	var out []string
	for term, prefixes := range unrelatedPrefixes() {
		if strings.Contains(keyword, term) {
			out = append(out, prefixes...)
		}
	}
	return out
}

func precededByAny(head string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasSuffix(head, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// MatchEntry applies a keyword entry against the text. A single-term entry
// matches via PreciseMatch; a multi-term entry is an AND-group, every member
// must independently match. It returns the matched terms, all of them for a
// group hit.
func MatchEntry(text string, entry config.KeywordEntry) (matched []string, ok bool) {
	terms := entry.Terms()
	if len(terms) == 0 {
		return nil, false
	}

	for _, term := range terms {
		if !PreciseMatch(text, term) {
			return nil, false
		}
	}
	return terms, true
}

// MatchAnyEntry returns the matched terms of the first entry that matches.
func MatchAnyEntry(text string, entries []config.KeywordEntry) ([]string, bool) {
	for _, entry := range entries {
		if matched, ok := MatchEntry(text, entry); ok {
			return matched, true
		}
	}
	return nil, false
}
