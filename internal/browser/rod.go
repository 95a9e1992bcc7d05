package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

const navigateTimeout = 30 * time.Second

// Config configures the Rod-backed browser.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls the local launcher. Ignored when RemoteURL is set.
	Headless bool

	// Stealth applies anti-detection patches to every new page.
	Stealth bool

	Logger *zap.Logger
}

// Manager owns the Chrome connection. Call Connect before opening pages and
// Close when the run finishes.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a browser Manager. Call Connect to attach to Chrome.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{cfg: cfg}
}

// Connect launches a local Chrome or attaches to a remote one.
func (m *Manager) Connect(ctx context.Context) error {
	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
	} else {
		m.lnch = launcher.New().Headless(m.cfg.Headless)
		u, err := m.lnch.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch chrome: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect %s: %w", wsURL, err)
	}

	m.browser = b
	m.cfg.Logger.Info("connected to browser", zap.Bool("remote", m.cfg.RemoteURL != ""))
	return nil
}

// OpenPage creates a tab, navigates to the URL, and returns it as a Surface.
func (m *Manager) OpenPage(ctx context.Context, pageURL string) (Surface, error) {
	if m.browser == nil {
		return nil, fmt.Errorf("browser: manager is not connected")
	}

	var page *rod.Page
	var err error

	if m.cfg.Stealth {
		page, err = stealth.Page(m.browser)
	} else {
		page, err = m.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	surface := &rodSurface{page: page, logger: m.cfg.Logger}
	if err := surface.Navigate(ctx, pageURL); err != nil {
		page.Close()
		return nil, err
	}

	return surface, nil
}

// Close tears down the Chrome connection and any launched process.
func (m *Manager) Close() error {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			return err
		}
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
	}
	return nil
}

type rodSurface struct {
	page   *rod.Page
	logger *zap.Logger
}

var _ Surface = (*rodSurface)(nil)

func (s *rodSurface) URL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

func (s *rodSurface) Find(ctx context.Context, selector string) (Element, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find %q: %w", selector, err)
	}
	if !has {
		return nil, ErrNotFound
	}
	return &rodElement{el: el}, nil
}

func (s *rodSurface) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find all %q: %w", selector, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}

func (s *rodSurface) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := s.page.Context(waitCtx).Element(selector)
	if err != nil {
		return fmt.Errorf("browser: wait visible %q: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("browser: wait visible %q: %w", selector, err)
	}
	return nil
}

func (s *rodSurface) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		has, el, err := s.page.Context(waitCtx).Has(selector)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("browser: wait gone %q: %w", selector, err)
		}
		if !has {
			return nil
		}
		if visible, err := el.Visible(); err == nil && !visible {
			return nil
		}

		select {
		case <-waitCtx.Done():
			// The indicator outliving its timeout is not fatal.
			return nil
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (s *rodSurface) ScrollBy(ctx context.Context, delta int) error {
	_, err := s.page.Context(ctx).Eval(`(dy) => window.scrollBy({top: dy, behavior: "smooth"})`, delta)
	if err != nil {
		return fmt.Errorf("browser: scroll: %w", err)
	}
	return nil
}

func (s *rodSurface) Navigate(ctx context.Context, pageURL string) error {
	navCtx, cancel := context.WithTimeout(ctx, navigateTimeout)
	defer cancel()

	if err := s.page.Context(navCtx).Navigate(pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		s.logger.Warn("wait load timeout", zap.String("url", pageURL), zap.Error(err))
	}
	return nil
}

func (s *rodSurface) Back(ctx context.Context) error {
	if err := s.page.Context(ctx).NavigateBack(); err != nil {
		return fmt.Errorf("browser: navigate back: %w", err)
	}
	return nil
}

func (s *rodSurface) Frames(ctx context.Context) ([]Surface, error) {
	iframes, err := s.page.Context(ctx).Elements("iframe")
	if err != nil {
		return nil, fmt.Errorf("browser: list frames: %w", err)
	}

	frames := make([]Surface, 0, len(iframes))
	for _, iframe := range iframes {
		framePage, err := iframe.Frame()
		if err != nil {
			continue
		}
		frames = append(frames, &rodSurface{page: framePage, logger: s.logger})
	}
	return frames, nil
}

type rodElement struct {
	el *rod.Element
}

var _ Element = (*rodElement)(nil)

func (e *rodElement) Text(ctx context.Context) (string, error) {
	text, err := e.el.Context(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("browser: element text: %w", err)
	}
	return text, nil
}

func (e *rodElement) Attribute(ctx context.Context, name string) (string, error) {
	attr, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", fmt.Errorf("browser: attribute %q: %w", name, err)
	}
	if attr == nil {
		return "", nil
	}
	return *attr, nil
}

func (e *rodElement) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click: %w", err)
	}
	return nil
}

func (e *rodElement) Input(ctx context.Context, text string) error {
	if err := e.el.Context(ctx).Input(text); err != nil {
		return fmt.Errorf("browser: input: %w", err)
	}
	return nil
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	if err != nil {
		return false, fmt.Errorf("browser: visible: %w", err)
	}
	return visible, nil
}

func (e *rodElement) Find(ctx context.Context, selector string) (Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find child %q: %w", selector, err)
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return &rodElement{el: els.First()}, nil
}

func (e *rodElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("browser: find children %q: %w", selector, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out, nil
}
