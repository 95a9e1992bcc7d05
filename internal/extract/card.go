package extract

import (
	"context"
	"strings"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
)

// cardSelectorStrategy reads the structured fields a recommend-list card
// exposes through its child nodes. Selector lists carry alternates because
// the site ships several card layouts at once.
type cardSelectorStrategy struct{}

func (s *cardSelectorStrategy) Name() string { return "card_selectors" }

var (
	cardNameSelectors     = []string{".name", ".geek-name", ".card-inner .name-wrap .name"}
	cardPositionSelectors = []string{".join-text-wrap", ".expect-position", ".row-flex .content"}
	cardCompanySelectors  = []string{".timeline-wrap.work-exps span", ".work-exps .content", ".gray"}
	cardSchoolSelectors   = []string{".timeline-wrap.edu-exps span", ".edu-exps .content"}
	cardSkillSelectors    = []string{".tag-list span", ".tags .tag-item", ".labels span"}
	cardIDAttrs           = []string{"data-geekid", "data-geek", "data-id"}
)

func (s *cardSelectorStrategy) Extract(ctx context.Context, el browser.Element) (*candidate.Record, error) {
	text, err := el.Text(ctx)
	if err != nil {
		return nil, err
	}
	text = NormalizeText(text)

	rec := &candidate.Record{
		FullText:  text,
		Name:      firstChildText(ctx, el, cardNameSelectors),
		Position:  firstChildText(ctx, el, cardPositionSelectors),
		Companies: childTexts(ctx, el, cardCompanySelectors),
		Schools:   childTexts(ctx, el, cardSchoolSelectors),
		Skills:    childTexts(ctx, el, cardSkillSelectors),
	}
	if rec.Name == "" && rec.Position == "" && len(rec.Companies) == 0 &&
		len(rec.Schools) == 0 && len(rec.Skills) == 0 {
		// None of the known layouts matched; let the text fallback parse it.
		return nil, ErrInsufficient
	}

	// The position node usually carries the "期望：" label; keep only the
	// position itself.
	if m := positionPattern.FindStringSubmatch(rec.Position); m != nil {
		rec.Position = strings.TrimSpace(m[1])
	}

	link, _ := el.Attribute(ctx, "href")
	rec.ID = candidate.DeriveID(nativeCardID(ctx, el), link, text)

	return rec, nil
}

// firstChildText returns the first non-empty child text across the selector
// alternates, trimmed to its first line.
func firstChildText(ctx context.Context, el browser.Element, selectors []string) string {
	for _, selector := range selectors {
		child, err := el.Find(ctx, selector)
		if err != nil {
			continue
		}
		if text, err := child.Text(ctx); err == nil {
			if text = firstLine(text); text != "" {
				return text
			}
		}
	}
	return ""
}

// childTexts collects every non-empty text under the first selector alternate
// that matches, deduplicated in DOM order.
func childTexts(ctx context.Context, el browser.Element, selectors []string) []string {
	for _, selector := range selectors {
		children, err := el.FindAll(ctx, selector)
		if err != nil || len(children) == 0 {
			continue
		}

		var out []string
		seen := make(map[string]struct{})
		for _, child := range children {
			text, err := child.Text(ctx)
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if _, ok := seen[text]; ok {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func nativeCardID(ctx context.Context, el browser.Element) string {
	for _, attr := range cardIDAttrs {
		if v, err := el.Attribute(ctx, attr); err == nil && v != "" {
			return v
		}
	}
	return ""
}

// CardID derives a best-effort identifier for a card without running the
// full extraction chain. Used to mark cards whose extraction failed so they
// are not retried on every re-render.
func CardID(ctx context.Context, el browser.Element) string {
	nativeID := nativeCardID(ctx, el)
	link, _ := el.Attribute(ctx, "href")
	text, _ := el.Text(ctx)
	if nativeID == "" && link == "" && strings.TrimSpace(text) == "" {
		return ""
	}
	return candidate.DeriveID(nativeID, link, text)
}

// cardTextStrategy is the last-resort fallback: derive everything from the
// card's normalized text.
type cardTextStrategy struct{}

func (s *cardTextStrategy) Name() string { return "card_text" }

func (s *cardTextStrategy) Extract(ctx context.Context, el browser.Element) (*candidate.Record, error) {
	text, err := el.Text(ctx)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return &candidate.Record{}, nil
	}

	rec := parseCardText(text)
	rec.ID = candidate.DeriveID("", "", text)
	return rec, nil
}
