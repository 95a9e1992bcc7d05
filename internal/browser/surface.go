// Package browser defines the capabilities the screening pipeline requires
// from a live page and provides a Rod-backed implementation. The pipeline
// itself only ever talks to the Surface and Element interfaces, keeping
// every stage testable against fakes.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a selector matches no element.
var ErrNotFound = errors.New("browser: element not found")

// ErrSurfaceGone is returned when the underlying page is no longer usable.
// It escalates to the caller as a run-level failure.
var ErrSurfaceGone = errors.New("browser: surface is gone")

// Element is a handle to a single node on a surface.
type Element interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	Click(ctx context.Context) error
	Input(ctx context.Context, text string) error
	Visible(ctx context.Context) (bool, error)
	// Find returns the first descendant matching the selector, or
	// ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns every descendant matching the selector, in DOM order.
	FindAll(ctx context.Context, selector string) ([]Element, error)
}

// Surface is a navigable page or nested frame.
type Surface interface {
	// URL returns the surface's current location.
	URL(ctx context.Context) (string, error)
	// Find returns the first element matching the selector, or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns every element matching the selector, in DOM order.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// WaitVisible blocks until an element matching the selector is visible
	// or the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// WaitGone blocks until no visible element matches the selector or the
	// timeout elapses. Used for loading indicators.
	WaitGone(ctx context.Context, selector string, timeout time.Duration) error
	// ScrollBy scrolls the surface vertically by delta pixels.
	ScrollBy(ctx context.Context, delta int) error
	// Navigate loads the given URL and waits for the page to settle.
	Navigate(ctx context.Context, url string) error
	// Back returns to the previous page in history.
	Back(ctx context.Context) error
	// Frames returns the surface's nested frames.
	Frames(ctx context.Context) ([]Surface, error)
}
