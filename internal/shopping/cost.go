package shopping

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CostEstimator estimates the price of one ingredient.
type CostEstimator interface {
	Estimate(name string) float64
}

type priceBand struct {
	min, max float64
}

var (
	baselineBand = priceBand{min: 2.00, max: 7.00}
	premiumBand  = priceBand{min: 5.00, max: 15.00}

	premiumKeywords = []string{"beef", "salmon", "fish"}
)

func bandFor(name string) priceBand {
	lower := strings.ToLower(name)
	for _, kw := range premiumKeywords {
		if strings.Contains(lower, kw) {
			return premiumBand
		}
	}
	return baselineBand
}

// clamp keeps v inside [min, max) at cent precision.
func (b priceBand) clamp(v float64) float64 {
	v = math.Floor(v*100) / 100
	if v < b.min {
		return b.min
	}
	if top := b.max - 0.01; v > top {
		return math.Floor(top*100+0.5) / 100
	}
	return v
}

// HeuristicEstimator derives a stable price from the ingredient name.
// The same name always yields the same price.
type HeuristicEstimator struct{}

// Estimate returns a price inside the band of the ingredient.
func (HeuristicEstimator) Estimate(name string) float64 {
	b := bandFor(name)
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	frac := float64(h.Sum64()%10000) / 10000
	return b.clamp(b.min + frac*(b.max-b.min))
}

// JitterEstimator moves the price of a base estimator by up to ten percent
// in either direction, staying inside the ingredient's band.
type JitterEstimator struct {
	base   CostEstimator
	spread float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewJitterEstimator creates a ±10% jitter decorator seeded with seed.
func NewJitterEstimator(base CostEstimator, seed int64) *JitterEstimator {
	return &JitterEstimator{base: base, spread: 0.10, rnd: rand.New(rand.NewSource(seed))}
}

// Estimate returns the jittered base price.
func (j *JitterEstimator) Estimate(name string) float64 {
	j.mu.Lock()
	f := j.rnd.Float64()*2 - 1
	j.mu.Unlock()

	v := j.base.Estimate(name) * (1 + f*j.spread)
	return bandFor(name).clamp(v)
}

// PriceTable estimates from explicit per-ingredient prices, falling back to
// another estimator for unknown ingredients.
type PriceTable struct {
	prices   map[string]float64
	keys     []string
	fallback CostEstimator
}

// NewPriceTable builds a table. Keys are matched case-insensitively as
// substrings of the ingredient name; the longest matching key wins.
// A nil fallback uses HeuristicEstimator.
func NewPriceTable(prices map[string]float64, fallback CostEstimator) (*PriceTable, error) {
	if fallback == nil {
		fallback = HeuristicEstimator{}
	}
	t := &PriceTable{prices: make(map[string]float64, len(prices)), fallback: fallback}
	for k, v := range prices {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid price %v for %q", v, k)
		}
		t.prices[key] = v
		t.keys = append(t.keys, key)
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
	return t, nil
}

// LoadPriceTable reads a YAML or JSON mapping of ingredient name to price.
func LoadPriceTable(path string, fallback CostEstimator) (*PriceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price table: %w", err)
	}
	var prices map[string]float64
	if err := yaml.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price table: %w", err)
	}
	return NewPriceTable(prices, fallback)
}

// Estimate returns the listed price or the fallback estimate.
func (t *PriceTable) Estimate(name string) float64 {
	lower := strings.ToLower(name)
	for _, key := range t.keys {
		if strings.Contains(lower, key) {
			return t.prices[key]
		}
	}
	return t.fallback.Estimate(name)
}
