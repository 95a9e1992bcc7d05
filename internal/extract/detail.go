package extract

import (
	"context"
	"strings"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
)

var (
	detailRootSelectors = []string{
		".resume-detail-wrap",
		".geek-detail",
		".resume-box",
	}
	detailNameSelectors = []string{
		".geek-name",
		".resume-detail-wrap .name",
	}
)

// detailSelectorStrategy reads the resume container of a detail surface and
// parses its text, preferring a dedicated name node when present.
type detailSelectorStrategy struct{}

func (s *detailSelectorStrategy) Name() string { return "detail_selectors" }

func (s *detailSelectorStrategy) Extract(ctx context.Context, surface browser.Surface) (*candidate.Record, error) {
	var root browser.Element
	var err error
	for _, selector := range detailRootSelectors {
		root, err = surface.Find(ctx, selector)
		if err == nil {
			break
		}
	}
	if root == nil {
		return nil, err
	}

	text, err := root.Text(ctx)
	if err != nil {
		return nil, err
	}

	rec := parseDetailText(text)

	for _, selector := range detailNameSelectors {
		el, err := surface.Find(ctx, selector)
		if err != nil {
			continue
		}
		if name, err := el.Text(ctx); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				rec.Name = firstLine(name)
				break
			}
		}
	}

	url, _ := surface.URL(ctx)
	rec.ID = candidate.DeriveID("", url, text)

	return rec, nil
}

// detailTextStrategy falls back to the whole-body text when no resume
// container is recognized.
type detailTextStrategy struct{}

func (s *detailTextStrategy) Name() string { return "detail_text" }

func (s *detailTextStrategy) Extract(ctx context.Context, surface browser.Surface) (*candidate.Record, error) {
	body, err := surface.Find(ctx, "body")
	if err != nil {
		return nil, err
	}

	text, err := body.Text(ctx)
	if err != nil {
		return nil, err
	}

	rec := parseDetailText(text)

	url, _ := surface.URL(ctx)
	rec.ID = candidate.DeriveID("", url, text)

	return rec, nil
}

// parseDetailText derives a record from a resume detail text block. Detail
// text is richer than a card, the same line-oriented parsers apply.
func parseDetailText(text string) *candidate.Record {
	rec := parseCardText(text)
	rec.Source = candidate.SourceDetail
	return rec
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
