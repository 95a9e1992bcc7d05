// Package greet performs the contact action for an approved candidate with
// humanized pacing and bounded click-strategy retries.
package greet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/utils"
	"go.uber.org/zap"
)

// ErrInteractionFailed marks a greet that failed after every click strategy.
// Fatal for the candidate only, never for the run.
var ErrInteractionFailed = errors.New("greet: interaction failed")

// greetButtonSelectors are the ordered click strategies. The site ships
// several button variants across list and detail layouts.
var greetButtonSelectors = []string{
	".btn-greet",
	".start-chat-btn",
	".btn.btn-startchat",
}

var messageInputSelectors = []string{
	".chat-input",
	"#chat-input",
	".input-area textarea",
}

const (
	// minInterval paces greets across candidates; bursts look mechanical
	// and trip countermeasures.
	minInterval = 2 * time.Second

	preClickDelayBase   = 300 * time.Millisecond
	preClickDelayJitter = 700 * time.Millisecond

	messageWait = 3 * time.Second
)

// defaultFallbackMessage is sent when no greet message is configured and the
// site presents a chat input anyway.
const defaultFallbackMessage = "您好，看到您的简历与我们在招的岗位比较匹配，方便聊一聊吗？"

// Greeter performs greets on a surface.
type Greeter struct {
	message string
	limiter *rate.Limiter
	logger  *zap.Logger
	rng     *rand.Rand

	jitter func(ctx context.Context) error
}

// New creates a Greeter. message is the templated hello; "{name}" is
// replaced with the candidate's name.
func New(message string, logger *zap.Logger) *Greeter {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Greeter{
		message: message,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.jitter = g.humanPause
	return g
}

// Greet clicks the contact affordance for the candidate and, when a chat
// input appears, sends the templated message. Strategies are tried in order;
// exhaustion returns ErrInteractionFailed.
func (g *Greeter) Greet(ctx context.Context, surface browser.Surface, rec *candidate.Record) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := g.jitter(ctx); err != nil {
		return err
	}

	var lastErr error
	for _, selector := range greetButtonSelectors {
		if err := ctx.Err(); err != nil {
			return err
		}

		el, err := surface.Find(ctx, selector)
		if err != nil {
			lastErr = err
			continue
		}

		if visible, err := el.Visible(ctx); err != nil || !visible {
			lastErr = fmt.Errorf("greet button %q not visible", selector)
			continue
		}

		if err := el.Click(ctx); err != nil {
			g.logger.Debug("greet click failed, trying next strategy",
				zap.String("selector", selector),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		g.logger.Info("greeted candidate",
			zap.String("candidate_id", rec.ID),
			zap.String("candidate_name", rec.Name),
		)

		g.sendMessage(ctx, surface, rec)
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrInteractionFailed, lastErr)
	}
	return ErrInteractionFailed
}

// sendMessage is best effort: many greets succeed with the site's canned
// hello and never show an input.
func (g *Greeter) sendMessage(ctx context.Context, surface browser.Surface, rec *candidate.Record) {
	message := g.renderMessage(rec)

	for _, selector := range messageInputSelectors {
		if err := surface.WaitVisible(ctx, selector, messageWait); err != nil {
			continue
		}
		el, err := surface.Find(ctx, selector)
		if err != nil {
			continue
		}
		if err := el.Input(ctx, message); err != nil {
			g.logger.Debug("typing greet message failed", zap.Error(err))
			return
		}
		g.logger.Debug("greet message typed", zap.String("candidate_id", rec.ID))
		return
	}
}

func (g *Greeter) renderMessage(rec *candidate.Record) string {
	message := strings.TrimSpace(g.message)
	if message == "" {
		message = defaultFallbackMessage
	}

	name := rec.Name
	if name == "" {
		name = "您"
	}
	return strings.ReplaceAll(message, "{name}", name)
}

func (g *Greeter) humanPause(ctx context.Context) error {
	delay := preClickDelayBase + time.Duration(g.rng.Int63n(int64(preClickDelayJitter)))
	return utils.WaitFor(ctx, delay)
}
