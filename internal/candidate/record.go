package candidate

import "strings"

// Source marks which surface a record was extracted from. Detail-sourced
// fields take precedence when records are merged.
type Source string

const (
	SourceCard   Source = "card"
	SourceDetail Source = "detail"
)

// Record is the extracted summary of one candidate. Once created for a
// processing attempt it is immutable except through Merge, which returns a
// new record.
type Record struct {
	// ID is a best-effort stable identifier used only for in-run dedup,
	// not cross-run identity.
	ID        string
	Name      string
	Position  string
	Companies []string
	Schools   []string
	Skills    []string
	// FullText is the normalized full-surface text, used as a fallback
	// matching source.
	FullText string
	Source   Source
}

// Usable reports whether the record carries enough signal for the pipeline.
// A record with no name but other data is degraded, not unusable.
func (r *Record) Usable() bool {
	if r == nil {
		return false
	}
	return r.Name != "" || r.Position != "" || strings.TrimSpace(r.FullText) != "" ||
		len(r.Companies) > 0 || len(r.Skills) > 0
}

// Degraded reports whether the record is missing its name and processing
// should be flagged as running on partial data.
func (r *Record) Degraded() bool {
	return r != nil && r.Name == "" && r.Usable()
}

// Corpus returns the fields used as a combined matching corpus for keyword
// scoring, in a stable order.
func (r *Record) Corpus() []string {
	if r == nil {
		return nil
	}

	corpus := make([]string, 0, 3+len(r.Skills))
	if r.Position != "" {
		corpus = append(corpus, r.Position)
	}
	corpus = append(corpus, r.Skills...)
	if strings.TrimSpace(r.FullText) != "" {
		corpus = append(corpus, r.FullText)
	}
	return corpus
}

// Merge combines a card-sourced record with a detail-sourced one: scalar
// fields are overwritten when the detail value is non-empty, list fields are
// unioned with de-duplication. The result is a new detail-sourced record,
// neither input is modified. The id always stays card-derived: dedup keys
// off list-card enumeration, and the detail page frequently derives a
// different id for the same candidate.
func Merge(card, detail *Record) *Record {
	if card == nil {
		card = &Record{}
	}
	if detail == nil {
		detail = &Record{}
	}

	merged := &Record{
		ID:       card.ID,
		Name:     card.Name,
		Position: card.Position,
		FullText: card.FullText,
		Source:   SourceDetail,
	}

	if merged.ID == "" {
		merged.ID = detail.ID
	}
	if detail.Name != "" {
		merged.Name = detail.Name
	}
	if detail.Position != "" {
		merged.Position = detail.Position
	}
	if strings.TrimSpace(detail.FullText) != "" {
		merged.FullText = detail.FullText
	}

	merged.Companies = unionStrings(card.Companies, detail.Companies)
	merged.Schools = unionStrings(card.Schools, detail.Schools)
	merged.Skills = unionStrings(card.Skills, detail.Skills)

	return merged
}

// unionStrings appends b's entries to a, dropping duplicates and preserving
// first-seen order.
func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
