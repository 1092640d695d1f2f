package grocery

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	"nutriplan/internal/llm"
)

//go:embed pricing_prompt.md
var pricingPrompt string

// ErrPricingUnavailable means the external pricing call failed or returned
// an unparsable shape. It is never fatal to the plan view: the list stays
// usable with nil prices and the caller may retry.
var ErrPricingUnavailable = errors.New("pricing unavailable")

// PricedItem is one externally estimated price.
type PricedItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// PriceMap indexes priced items by their full canonical name and by each
// word of it longer than three characters, so fuzzy matching against recipe
// tokens gets several chances to hit.
type PriceMap map[string]PricedItem

// Estimate is the parsed result of one pricing request.
type Estimate struct {
	Items []PricedItem
}

// PriceMap builds the fuzzy lookup index over the estimate.
func (e *Estimate) PriceMap() PriceMap {
	pm := make(PriceMap)
	for _, it := range e.Items {
		key := strings.ToLower(strings.TrimSpace(it.Name))
		if key == "" {
			continue
		}
		if _, exists := pm[key]; !exists {
			pm[key] = it
		}
		for _, tok := range splitTokens(it.Name) {
			if utf8.RuneCountInString(tok) < minTokenLen {
				continue
			}
			if _, exists := pm[tok]; !exists {
				pm[tok] = it
			}
		}
	}
	return pm
}

// BuildList places the estimated items into a fresh list with the default
// category set, for plans that have no grocery list yet.
func BuildList(e *Estimate) List {
	l := NewList()
	for _, it := range e.Items {
		cat := CanonicalCategory(it.Category)
		price := it.Price
		item := Item{
			Name:     it.Name,
			Quantity: quantityOrDefault(it.Quantity),
			Price:    &price,
		}
		if it.Unit != "" {
			u := it.Unit
			item.Unit = &u
		}
		l[cat] = append(l[cat], item)
	}
	return l
}

// Estimator requests price estimates from the text-generation service.
type Estimator struct {
	textGen llm.TextGenerator
}

// NewEstimator creates a new Estimator.
func NewEstimator(textGen llm.TextGenerator) *Estimator {
	return &Estimator{textGen: textGen}
}

// FetchEstimates sends the whole keyword list as one batched request. A
// single slow or failed call therefore affects the whole list rather than
// isolated items; the trade-off keeps cost and latency at one call per
// estimate. Any failure is reported as ErrPricingUnavailable.
func (e *Estimator) FetchEstimates(ctx context.Context, keywords []string, people int) (*Estimate, llm.TokenUsage, error) {
	if people < 1 {
		people = 1
	}

	prompt, err := buildPricingPrompt(keywords, people)
	if err != nil {
		return nil, llm.TokenUsage{}, err
	}

	resp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}

	estimate, err := parseEstimate(resp.Content)
	if err != nil {
		return nil, resp.Usage, err
	}
	return estimate, resp.Usage, nil
}

func buildPricingPrompt(keywords []string, people int) (string, error) {
	tmpl, err := template.New("pricing").Parse(pricingPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Keywords string
		People   int
	}{
		Keywords: strings.Join(keywords, ", "),
		People:   people,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseEstimate accepts both response shapes seen in the wild: a flat
// "items" array, or a "categories" object keyed by category name.
func parseEstimate(content string) (*Estimate, error) {
	var parsed struct {
		Items      []PricedItem            `json:"items"`
		Categories map[string][]PricedItem `json:"categories"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(content)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse pricing response: %v", ErrPricingUnavailable, err)
	}

	items := parsed.Items
	if len(items) == 0 {
		cats := make([]string, 0, len(parsed.Categories))
		for cat := range parsed.Categories {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			for _, it := range parsed.Categories[cat] {
				if it.Category == "" {
					it.Category = cat
				}
				items = append(items, it)
			}
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: response contained no priced items", ErrPricingUnavailable)
	}

	return &Estimate{Items: items}, nil
}
