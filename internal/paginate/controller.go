// Package paginate drives incremental reveal of candidate cards on the list
// surface: jittered scroll steps, loading-indicator waits, a load-more
// fallback, and end-of-list detection with consecutive-failure budgets.
package paginate

import (
	"context"
	"math/rand"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/utils"
	"go.uber.org/zap"
)

const (
	// maxScrollSteps bounds one reveal attempt. Many small steps trigger
	// fewer lazy-load races than one large jump and look less mechanical.
	maxScrollSteps = 10

	// failureBudget is the number of consecutive no-new-cards attempts
	// (and consecutive empty pages) before the controller reports
	// exhaustion.
	failureBudget = 3

	// batchSize is how many candidates the site reveals per full batch.
	// Used as a logging/pacing signal only, never for correctness.
	batchSize = 15

	scrollStepBase   = 400
	scrollStepJitter = 300

	defaultStepDelay  = 150 * time.Millisecond
	defaultStepJitter = 250 * time.Millisecond

	loadingWait = 5 * time.Second
)

// Selectors locate the pagination-relevant elements on the list surface.
type Selectors struct {
	Card      string
	Loading   string
	LoadMore  string
	EndOfList string
}

// DefaultSelectors covers the recommend-list layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:      ".card-item, .geek-item",
		Loading:   ".loading, .load-state",
		LoadMore:  ".load-more, .more-btn",
		EndOfList: ".finished, .no-more",
	}
}

// Controller reveals more cards on demand and tracks exhaustion.
type Controller struct {
	selectors Selectors
	logger    *zap.Logger
	rng       *rand.Rand

	stepDelay  time.Duration
	stepJitter time.Duration

	noNewCards int
	emptyPages int
	exhausted  bool
}

func New(selectors Selectors, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		selectors:  selectors,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		stepDelay:  defaultStepDelay,
		stepJitter: defaultStepJitter,
	}
}

// Exhausted reports whether the controller has decided the list is done.
func (c *Controller) Exhausted() bool {
	return c.exhausted
}

// CountCards returns the number of currently visible cards.
func (c *Controller) CountCards(ctx context.Context, surface browser.Surface) (int, error) {
	cards, err := surface.FindAll(ctx, c.selectors.Card)
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}

// RevealMore attempts to make new cards visible. It returns true iff the
// card count increased. False is returned only after every strategy is
// exhausted and either the failure budget is hit or an explicit end-of-list
// indicator is present.
func (c *Controller) RevealMore(ctx context.Context, surface browser.Surface) (bool, error) {
	if c.exhausted {
		return false, nil
	}

	before, err := c.CountCards(ctx, surface)
	if err != nil {
		return false, err
	}

	if before == 0 {
		c.emptyPages++
		if c.emptyPages >= failureBudget {
			c.logger.Info("list stayed empty, giving up",
				zap.Int("attempts", c.emptyPages),
			)
			c.exhausted = true
			return false, nil
		}
	} else {
		c.emptyPages = 0
	}

	if err := c.scrollIncrementally(ctx, surface); err != nil {
		return false, err
	}

	after, err := c.CountCards(ctx, surface)
	if err != nil {
		return false, err
	}

	if after <= before {
		// Scrolling alone did not help; try the load-more affordance.
		if clicked := c.clickLoadMore(ctx, surface); clicked {
			_ = surface.WaitGone(ctx, c.selectors.Loading, loadingWait)
			after, err = c.CountCards(ctx, surface)
			if err != nil {
				return false, err
			}
		}
	}

	if after > before {
		c.noNewCards = 0
		gained := after - before
		c.logger.Debug("revealed cards",
			zap.Int("before", before),
			zap.Int("after", after),
			zap.Bool("full_batch", gained >= batchSize),
		)
		return true, nil
	}

	if c.atEndOfList(ctx, surface) {
		c.logger.Info("end of list indicator present")
		c.exhausted = true
		return false, nil
	}

	c.noNewCards++
	if c.noNewCards >= failureBudget {
		c.logger.Info("no new cards after repeated attempts",
			zap.Int("attempts", c.noNewCards),
			zap.Int("cards", after),
		)
		c.exhausted = true
		return false, nil
	}

	return false, nil
}

// scrollIncrementally performs a bounded sequence of small jittered scroll
// steps, waiting out any loading indicator between steps.
func (c *Controller) scrollIncrementally(ctx context.Context, surface browser.Surface) error {
	for i := 0; i < maxScrollSteps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delta := scrollStepBase + c.rng.Intn(scrollStepJitter)
		if err := surface.ScrollBy(ctx, delta); err != nil {
			return err
		}

		delay := c.stepDelay
		if c.stepJitter > 0 {
			delay += time.Duration(c.rng.Int63n(int64(c.stepJitter)))
		}
		if err := utils.WaitFor(ctx, delay); err != nil {
			return err
		}

		if c.loadingVisible(ctx, surface) {
			_ = surface.WaitGone(ctx, c.selectors.Loading, loadingWait)
		}
	}
	return nil
}

func (c *Controller) loadingVisible(ctx context.Context, surface browser.Surface) bool {
	el, err := surface.Find(ctx, c.selectors.Loading)
	if err != nil {
		return false
	}
	visible, err := el.Visible(ctx)
	return err == nil && visible
}

func (c *Controller) clickLoadMore(ctx context.Context, surface browser.Surface) bool {
	el, err := surface.Find(ctx, c.selectors.LoadMore)
	if err != nil {
		return false
	}
	if visible, err := el.Visible(ctx); err != nil || !visible {
		return false
	}
	if err := el.Click(ctx); err != nil {
		c.logger.Debug("load more click failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Controller) atEndOfList(ctx context.Context, surface browser.Surface) bool {
	el, err := surface.Find(ctx, c.selectors.EndOfList)
	if err != nil {
		return false
	}
	visible, err := el.Visible(ctx)
	return err == nil && visible
}
