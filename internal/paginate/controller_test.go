package paginate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"go.uber.org/zap"
)

type fakeElement struct {
	text    string
	visible bool
	clicked int
}

func (f *fakeElement) Text(context.Context) (string, error)              { return f.text, nil }
func (f *fakeElement) Attribute(context.Context, string) (string, error) { return "", nil }
func (f *fakeElement) Click(context.Context) error                       { f.clicked++; return nil }
func (f *fakeElement) Input(context.Context, string) error               { return nil }
func (f *fakeElement) Visible(context.Context) (bool, error)             { return f.visible, nil }

func (f *fakeElement) Find(context.Context, string) (browser.Element, error) {
	return nil, browser.ErrNotFound
}

func (f *fakeElement) FindAll(context.Context, string) ([]browser.Element, error) {
	return nil, nil
}

// fakeListSurface serves configurable card counts per CountCards call.
type fakeListSurface struct {
	counts   []int
	countIdx int
	loadMore *fakeElement
	endEl    *fakeElement
	scrolls  int
}

func (f *fakeListSurface) URL(context.Context) (string, error) { return "https://example.com", nil }

func (f *fakeListSurface) Find(_ context.Context, selector string) (browser.Element, error) {
	switch selector {
	case DefaultSelectors().LoadMore:
		if f.loadMore != nil {
			return f.loadMore, nil
		}
	case DefaultSelectors().EndOfList:
		if f.endEl != nil {
			return f.endEl, nil
		}
	}
	return nil, browser.ErrNotFound
}

func (f *fakeListSurface) FindAll(context.Context, string) ([]browser.Element, error) {
	count := 0
	if f.countIdx < len(f.counts) {
		count = f.counts[f.countIdx]
		f.countIdx++
	} else if len(f.counts) > 0 {
		count = f.counts[len(f.counts)-1]
	}

	els := make([]browser.Element, count)
	for i := range els {
		els[i] = &fakeElement{}
	}
	return els, nil
}

func (f *fakeListSurface) WaitVisible(context.Context, string, time.Duration) error { return nil }
func (f *fakeListSurface) WaitGone(context.Context, string, time.Duration) error    { return nil }
func (f *fakeListSurface) ScrollBy(context.Context, int) error                      { f.scrolls++; return nil }
func (f *fakeListSurface) Navigate(context.Context, string) error                   { return nil }
func (f *fakeListSurface) Back(context.Context) error                               { return nil }
func (f *fakeListSurface) Frames(context.Context) ([]browser.Surface, error)        { return nil, nil }

func newTestController() *Controller {
	c := New(DefaultSelectors(), zap.NewNop())
	c.stepDelay = 0
	c.stepJitter = 0
	return c
}

func TestRevealMoreReportsNewCards(t *testing.T) {
	t.Parallel()

	// 15 cards before, 30 after the scroll loop.
	surface := &fakeListSurface{counts: []int{15, 30}}
	c := newTestController()

	revealed, err := c.RevealMore(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revealed {
		t.Fatalf("expected reveal to succeed")
	}
	if surface.scrolls != maxScrollSteps {
		t.Fatalf("expected %d scroll steps, got %d", maxScrollSteps, surface.scrolls)
	}
	if c.Exhausted() {
		t.Fatalf("successful reveal must not exhaust the controller")
	}
}

func TestRevealMoreExhaustsAfterBudget(t *testing.T) {
	t.Parallel()

	surface := &fakeListSurface{counts: []int{15}}
	c := newTestController()

	for i := 0; i < failureBudget; i++ {
		revealed, err := c.RevealMore(context.Background(), surface)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i, err)
		}
		if revealed {
			t.Fatalf("attempt %d: card count never grows, reveal must fail", i)
		}
	}

	if !c.Exhausted() {
		t.Fatalf("controller must be exhausted after %d failed attempts", failureBudget)
	}

	// Further calls are cheap no-ops.
	scrollsBefore := surface.scrolls
	if revealed, _ := c.RevealMore(context.Background(), surface); revealed {
		t.Fatalf("exhausted controller must not reveal")
	}
	if surface.scrolls != scrollsBefore {
		t.Fatalf("exhausted controller must not touch the surface")
	}
}

func TestRevealMoreLoadMoreFallback(t *testing.T) {
	t.Parallel()

	loadMore := &fakeElement{visible: true}
	// Count sequence: before=15, after-scroll=15, after-click=30.
	surface := &fakeListSurface{counts: []int{15, 15, 30}, loadMore: loadMore}
	c := newTestController()

	revealed, err := c.RevealMore(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !revealed {
		t.Fatalf("expected load-more fallback to reveal cards")
	}
	if loadMore.clicked != 1 {
		t.Fatalf("expected one load-more click, got %d", loadMore.clicked)
	}
}

func TestRevealMoreEndOfListIndicator(t *testing.T) {
	t.Parallel()

	surface := &fakeListSurface{
		counts: []int{15},
		endEl:  &fakeElement{visible: true},
	}
	c := newTestController()

	revealed, err := c.RevealMore(context.Background(), surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if revealed {
		t.Fatalf("expected no reveal at end of list")
	}
	if !c.Exhausted() {
		t.Fatalf("end-of-list indicator must exhaust immediately")
	}
}

func TestRevealMoreEmptyPageBudget(t *testing.T) {
	t.Parallel()

	surface := &fakeListSurface{counts: []int{0}}
	c := newTestController()

	for i := 0; i < failureBudget-1; i++ {
		if _, err := c.RevealMore(context.Background(), surface); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if c.Exhausted() {
		t.Fatalf("budget not yet hit")
	}

	if _, err := c.RevealMore(context.Background(), surface); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Exhausted() {
		t.Fatalf("consecutive empty pages must exhaust the controller")
	}
}

func TestRevealMoreCancellable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	surface := &fakeListSurface{counts: []int{15}}
	c := newTestController()

	_, err := c.RevealMore(ctx, surface)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}
}
