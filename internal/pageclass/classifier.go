// Package pageclass decides what kind of surface the pipeline is looking at.
// Classification is a pure function of URL text, with a bounded search over
// nested frames when the top-level URL is inconclusive.
package pageclass

import (
	"context"
	"fmt"
	"strings"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"go.uber.org/zap"
)

// Kind is the classification of a navigable surface.
type Kind string

const (
	ListPage   Kind = "list"
	DetailPage Kind = "detail"
	Unknown    Kind = "unknown"
)

// maxFrames bounds the nested-frame search.
const maxFrames = 10

// The two families are mutually exclusive: a URL matching both would be a
// site change and classifies as whichever family matches first.
var (
	listPatterns = []string{
		"/web/chat/recommend",
		"/web/boss/recommend",
		"/web/chat/search",
		"recommendFrame",
	}
	detailPatterns = []string{
		"/web/boss/detail",
		"/web/geek/detail",
		"/resume/detail",
		"geekDetail",
	}
)

// Classification is the classifier outcome. Surface is the frame whose URL
// matched; for top-level matches it is the input surface itself. It is nil
// when Kind is Unknown.
type Classification struct {
	Kind    Kind
	Surface browser.Surface
}

// ClassifyURL classifies a bare URL string. Deterministic and allocation-free,
// the frame search below builds on it.
func ClassifyURL(url string) Kind {
	url = strings.ToLower(strings.TrimSpace(url))
	if url == "" {
		return Unknown
	}

	for _, p := range listPatterns {
		if strings.Contains(url, strings.ToLower(p)) {
			return ListPage
		}
	}
	for _, p := range detailPatterns {
		if strings.Contains(url, strings.ToLower(p)) {
			return DetailPage
		}
	}
	return Unknown
}

// Classifier inspects surfaces.
type Classifier struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify inspects the surface's own URL first, then searches its nested
// frames (bounded) for one whose URL matches a known pattern. The returned
// surface handle is the one subsequent extraction should run against.
func (c *Classifier) Classify(ctx context.Context, surface browser.Surface) (Classification, error) {
	url, err := surface.URL(ctx)
	if err != nil {
		// A surface that cannot report its own URL is unusable for the rest
		// of the run.
		return Classification{Kind: Unknown}, fmt.Errorf("%w: %w", browser.ErrSurfaceGone, err)
	}

	if kind := ClassifyURL(url); kind != Unknown {
		return Classification{Kind: kind, Surface: surface}, nil
	}

	frames, err := surface.Frames(ctx)
	if err != nil {
		c.logger.Debug("listing nested frames failed", zap.Error(err))
		return Classification{Kind: Unknown}, nil
	}

	if len(frames) > maxFrames {
		frames = frames[:maxFrames]
	}

	for _, frame := range frames {
		frameURL, err := frame.URL(ctx)
		if err != nil {
			continue
		}
		if kind := ClassifyURL(frameURL); kind != Unknown {
			c.logger.Debug("classified via nested frame",
				zap.String("frame_url", frameURL),
				zap.String("kind", string(kind)),
			)
			return Classification{Kind: kind, Surface: frame}, nil
		}
	}

	return Classification{Kind: Unknown}, nil
}
