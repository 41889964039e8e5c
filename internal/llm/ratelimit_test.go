package llm

import (
	"context"
	"errors"
	"testing"
)

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	g.calls++
	return ContentResponse{Content: prompt}, nil
}

func TestWithRateLimit(t *testing.T) {
	t.Run("DisabledReturnsSameGenerator", func(t *testing.T) {
		next := &countingGenerator{}
		if got := WithRateLimit(next, 0); got != TextGenerator(next) {
			t.Fatal("expected the generator to be returned unchanged")
		}
	})

	t.Run("FirstCallPassesThrough", func(t *testing.T) {
		next := &countingGenerator{}
		gen := WithRateLimit(next, 60)

		resp, err := gen.GenerateContent(context.Background(), "ping")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Content != "ping" || next.calls != 1 {
			t.Errorf("expected one pass-through call, got %d calls and %q", next.calls, resp.Content)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		next := &countingGenerator{}
		gen := WithRateLimit(next, 1)

		// Drain the single burst token.
		if _, err := gen.GenerateContent(context.Background(), "first"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gen.GenerateContent(ctx, "second")
		if err == nil {
			t.Fatal("expected an error for a cancelled context, got nil")
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if next.calls != 1 {
			t.Errorf("expected the underlying generator to be skipped, got %d calls", next.calls)
		}
	})
}
