package pageclass

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"go.uber.org/zap"
)

type fakeSurface struct {
	url    string
	urlErr error
	frames []browser.Surface
}

func (f *fakeSurface) URL(context.Context) (string, error) { return f.url, f.urlErr }
func (f *fakeSurface) Find(context.Context, string) (browser.Element, error) {
	return nil, browser.ErrNotFound
}
func (f *fakeSurface) FindAll(context.Context, string) ([]browser.Element, error) { return nil, nil }
func (f *fakeSurface) WaitVisible(context.Context, string, time.Duration) error   { return nil }
func (f *fakeSurface) WaitGone(context.Context, string, time.Duration) error      { return nil }
func (f *fakeSurface) ScrollBy(context.Context, int) error                        { return nil }
func (f *fakeSurface) Navigate(context.Context, string) error                     { return nil }
func (f *fakeSurface) Back(context.Context) error                                 { return nil }
func (f *fakeSurface) Frames(context.Context) ([]browser.Surface, error)          { return f.frames, nil }

func TestClassifyURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url    string
		expect Kind
	}{
		{"https://www.zhipin.com/web/chat/recommend?ka=menu", ListPage},
		{"https://www.zhipin.com/web/boss/recommend", ListPage},
		{"https://www.zhipin.com/web/boss/detail/abc123", DetailPage},
		{"https://www.zhipin.com/web/geek/detail?id=1", DetailPage},
		{"https://www.zhipin.com/web/boss/", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := ClassifyURL(tt.url); got != tt.expect {
			t.Fatalf("ClassifyURL(%q) = %s, expected %s", tt.url, got, tt.expect)
		}
	}
}

func TestClassifyTopLevelMatch(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{url: "https://www.zhipin.com/web/chat/recommend"}
	result, err := New(zap.NewNop()).Classify(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Kind != ListPage {
		t.Fatalf("expected list page, got %s", result.Kind)
	}
	if result.Surface != surface {
		t.Fatalf("expected the input surface handle back")
	}
}

func TestClassifyFallsBackToFrames(t *testing.T) {
	t.Parallel()

	frame := &fakeSurface{url: "https://www.zhipin.com/web/boss/recommendFrame"}
	surface := &fakeSurface{
		url:    "https://www.zhipin.com/web/boss/index",
		frames: []browser.Surface{&fakeSurface{url: "about:blank"}, frame},
	}

	result, err := New(zap.NewNop()).Classify(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Kind != ListPage {
		t.Fatalf("expected list page via frame, got %s", result.Kind)
	}
	if result.Surface != frame {
		t.Fatalf("expected the matching frame as active surface")
	}
}

func TestClassifyBoundsFrameSearch(t *testing.T) {
	t.Parallel()

	frames := make([]browser.Surface, 0, maxFrames+2)
	for i := 0; i < maxFrames; i++ {
		frames = append(frames, &fakeSurface{url: "about:blank"})
	}
	// A matching frame beyond the bound must not be reached.
	frames = append(frames, &fakeSurface{url: "https://www.zhipin.com/web/chat/recommend"})

	surface := &fakeSurface{url: "https://www.zhipin.com/other", frames: frames}
	result, err := New(zap.NewNop()).Classify(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Kind != Unknown {
		t.Fatalf("expected unknown when match is beyond frame bound, got %s", result.Kind)
	}
	if result.Surface != nil {
		t.Fatalf("unknown classification must carry no surface handle")
	}
}

func TestClassifyPropagatesURLError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("page gone")
	surface := &fakeSurface{urlErr: sentinel}

	_, err := New(zap.NewNop()).Classify(context.Background(), surface)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected url error to propagate, got %v", err)
	}
	if !errors.Is(err, browser.ErrSurfaceGone) {
		t.Fatalf("expected a gone-surface error, got %v", err)
	}
}
