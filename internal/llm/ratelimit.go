package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedGenerator throttles calls to an underlying TextGenerator.
type rateLimitedGenerator struct {
	next    TextGenerator
	limiter *rate.Limiter
}

// WithRateLimit wraps a generator so that at most rpm requests per minute
// reach it. A non-positive rpm disables limiting and returns next unchanged.
func WithRateLimit(next TextGenerator, rpm int) TextGenerator {
	if rpm <= 0 {
		return next
	}
	return &rateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (g *rateLimitedGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return ContentResponse{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return g.next.GenerateContent(ctx, prompt)
}
