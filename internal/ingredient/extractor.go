package ingredient

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"
	"time"

	"ai-meal-shopper/internal/llm"
	"ai-meal-shopper/internal/logger"
	"ai-meal-shopper/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTemplate = template.Must(template.New("extractor").Parse(extractorPrompt))

// AgentName identifies this agent in execution metrics.
const AgentName = "IngredientExtractor"

// ErrNoIngredients is returned when the model answers with an empty list.
var ErrNoIngredients = errors.New("no ingredients extracted")

// Ingredient is a single purchasable ingredient of a meal.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type extractorResponse struct {
	Ingredients []Ingredient `json:"ingredients"`
}

type promptData struct {
	MealName    string
	Description string
}

// Extractor asks an LLM for the ingredients of one meal at a time.
// It is safe for concurrent use.
type Extractor struct {
	textGen  llm.TextGenerator
	recorder shared.MetaRecorder

	mu    sync.Mutex
	usage shared.TokenUsage
}

// NewExtractor creates an Extractor. recorder may be nil.
func NewExtractor(textGen llm.TextGenerator, recorder shared.MetaRecorder) *Extractor {
	return &Extractor{textGen: textGen, recorder: recorder}
}

// ExtractIngredients returns the ingredients needed to cook the given meal.
func (e *Extractor) ExtractIngredients(ctx context.Context, mealName, description string) ([]Ingredient, error) {
	start := time.Now()

	prompt, err := buildPrompt(mealName, description)
	if err != nil {
		return nil, err
	}

	llmResp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to get LLM response: %w", err)
	}

	e.record(ctx, shared.AgentMeta{
		AgentName: AgentName,
		Usage:     llmResp.Usage,
		Latency:   time.Since(start),
	})

	ingredients, err := parseResponse(llmResp.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ingredients for %q: %w", mealName, err)
	}
	return ingredients, nil
}

// Usage returns the token usage accumulated by this extractor.
func (e *Extractor) Usage() shared.TokenUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.usage
}

func (e *Extractor) record(ctx context.Context, meta shared.AgentMeta) {
	e.mu.Lock()
	e.usage = e.usage.Add(meta.Usage)
	e.mu.Unlock()

	if e.recorder == nil || meta.Usage.IsZero() {
		return
	}
	if err := e.recorder.RecordMeta(meta); err != nil {
		logger.FromContext(ctx).Warn("failed to record extractor metrics", slog.Any("error", err))
	}
}

func buildPrompt(mealName, description string) (string, error) {
	text, err := CleanDescription(description)
	if err != nil {
		return "", fmt.Errorf("failed to clean description: %w", err)
	}

	var buf bytes.Buffer
	if err := extractorTemplate.Execute(&buf, promptData{MealName: mealName, Description: text}); err != nil {
		return "", fmt.Errorf("failed to render extractor prompt: %w", err)
	}
	return buf.String(), nil
}

func parseResponse(content string) ([]Ingredient, error) {
	content = stripCodeFence(content)

	var items []Ingredient
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal LLM response: %w", err)
		}
	} else {
		var resp extractorResponse
		if err := json.Unmarshal([]byte(content), &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal LLM response: %w", err)
		}
		items = resp.Ingredients
	}

	out := make([]Ingredient, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		out = append(out, Ingredient{Name: name, Quantity: strings.TrimSpace(it.Quantity)})
	}
	if len(out) == 0 {
		return nil, ErrNoIngredients
	}
	return out, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block, if any.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
