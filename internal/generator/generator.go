// Package generator produces new daily quotes through a caller-supplied
// text source, balancing output across categories and retrying
// transient upstream failures with a linear backoff.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Category labels a quote's theme. The closed set below drives the
// balancing logic.
type Category string

const (
	CategoryMotivation Category = "motivation"
	CategoryDiscipline Category = "discipline"
	CategoryWisdom     Category = "wisdom"
	CategoryGratitude  Category = "gratitude"
)

// Categories lists all categories in a fixed order. The order doubles
// as the tie-break for balancing.
func Categories() []Category {
	return []Category{CategoryMotivation, CategoryDiscipline, CategoryWisdom, CategoryGratitude}
}

// Common errors for quote generation.
var (
	// ErrEmptyQuote is returned when the text source produces blank
	// output.
	ErrEmptyQuote = errors.New("text source returned an empty quote")

	// ErrAttemptsExhausted wraps the final failure after all retries.
	ErrAttemptsExhausted = errors.New("quote generation attempts exhausted")
)

// TextSource is the language-model wrapper the generator drives.
// Implementations live outside this package.
type TextSource interface {
	GenerateQuote(ctx context.Context, category Category) (string, error)
}

// Config holds generator tuning.
type Config struct {
	// MaxAttempts is the number of tries per Generate call. Defaults
	// to 3.
	MaxAttempts int

	// BackoffStep is the base of the linear backoff: attempt n waits
	// n*BackoffStep before retrying. Defaults to 2s.
	BackoffStep time.Duration

	// RequestsPerMinute caps calls to the text source. Defaults to 10.
	RequestsPerMinute int

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Generator wraps a TextSource with retry, backoff and rate limiting.
type Generator struct {
	source      TextSource
	maxAttempts int
	backoffStep time.Duration
	limiter     *rate.Limiter
	logger      *log.Logger
}

// New creates a generator over a text source.
func New(source TextSource, cfg Config) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffStep < 0 {
		cfg.BackoffStep = 0
	} else if cfg.BackoffStep == 0 {
		cfg.BackoffStep = 2 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Generator{
		source:      source,
		maxAttempts: cfg.MaxAttempts,
		backoffStep: cfg.BackoffStep,
		// Burst covers one full retry cycle; the rate caps sustained use.
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.MaxAttempts),
		logger:      cfg.Logger,
	}
}

// PickCategory returns the least-represented category given the current
// archive counts. Categories missing from the map count as zero; ties
// resolve to the earliest category in Categories order.
func PickCategory(counts map[Category]int) Category {
	picked := Categories()[0]
	best := counts[picked]

	for _, c := range Categories()[1:] {
		if counts[c] < best {
			picked = c
			best = counts[c]
		}
	}
	return picked
}

// Generate produces one quote for the category, retrying failures up to
// MaxAttempts with a linear backoff between tries. Blank output counts
// as a failure. The final error wraps both ErrAttemptsExhausted and the
// last underlying failure.
func (g *Generator) Generate(ctx context.Context, category Category) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}

		text, err := g.source.GenerateQuote(ctx, category)
		if err == nil && strings.TrimSpace(text) == "" {
			err = ErrEmptyQuote
		}
		if err == nil {
			if attempt > 1 {
				g.logger.Info("quote generation recovered", "category", category, "attempt", attempt)
			}
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		g.logger.Warn("quote generation attempt failed",
			"category", category,
			"attempt", attempt,
			"max", g.maxAttempts,
			"err", err)

		if attempt < g.maxAttempts {
			if err := sleepCtx(ctx, time.Duration(attempt)*g.backoffStep); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, g.maxAttempts, lastErr)
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
