package grocery

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrItemNotFound is returned when a named item or category does not exist
// on the list. Callers must surface it; silently ignoring a failed edit
// would leave the UI out of sync with the stored list.
var ErrItemNotFound = errors.New("grocery item not found")

// stopWords are tokens that carry no ingredient signal. Most noise words
// fall to the length filter already; these are the ones that survive it.
var stopWords = map[string]struct{}{
	"with": {},
	"and":  {},
	"the":  {},
}

const minTokenLen = 4

// MealSource is the extraction view of a single meal: its display name and,
// when the recipe carries one, its explicit ingredient list.
type MealSource struct {
	Name        string
	Ingredients []string
}

// splitTokens lower-cases the text and splits it on whitespace, commas and
// ampersands.
func splitTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '&'
	})
}

// keepToken reports whether a token survives the length and stop-word
// filters. Length counts runes, not bytes, so accented ingredient names are
// filtered the same as plain ASCII ones.
func keepToken(tok string) bool {
	if utf8.RuneCountInString(tok) < minTokenLen {
		return false
	}
	_, stop := stopWords[tok]
	return !stop
}

// ExtractKeywords derives candidate ingredient keywords from meals. Explicit
// ingredient lists take precedence; otherwise the meal name itself is
// tokenized, which is lossy by nature — callers must tolerate false
// positives in category assignment. A plan with no days or no named meals
// yields an empty set, never an error.
func ExtractKeywords(sources []MealSource) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		texts := src.Ingredients
		if len(texts) == 0 {
			if src.Name == "" {
				continue
			}
			texts = []string{src.Name}
		}
		for _, text := range texts {
			for _, tok := range splitTokens(text) {
				if keepToken(tok) {
					seen[tok] = struct{}{}
				}
			}
		}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// KeywordsFromList derives keywords from the item names already on a list,
// used when pricing a standalone list that has no meal plan behind it.
func KeywordsFromList(l List) []string {
	var sources []MealSource
	for _, items := range l {
		for _, it := range items {
			sources = append(sources, MealSource{Name: it.Name})
		}
	}
	return ExtractKeywords(sources)
}

// Merge fills prices into an existing list from a price map. For each item
// the lookup tries the exact lower-cased name first, then each word of the
// name longer than three characters; first match wins. Items that already
// carry a price are never overwritten, so a user's manual correction
// survives any number of re-estimates. Unmatched items keep a nil price
// rather than being dropped. Merging the same price map twice is a no-op
// the second time.
func Merge(l List, prices PriceMap) {
	for cat, items := range l {
		for i := range items {
			if items[i].Price != nil {
				continue
			}
			priced, ok := lookup(prices, items[i].Name)
			if !ok {
				continue
			}
			p := priced.Price
			items[i].Price = &p
			if priced.Unit != "" {
				u := priced.Unit
				items[i].Unit = &u
			}
			if items[i].Quantity <= 0 {
				items[i].Quantity = 1
			}
		}
		l[cat] = items
	}
}

func lookup(prices PriceMap, name string) (PricedItem, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if it, ok := prices[key]; ok {
		return it, true
	}
	for _, tok := range splitTokens(name) {
		if utf8.RuneCountInString(tok) < minTokenLen {
			continue
		}
		if it, ok := prices[tok]; ok {
			return it, true
		}
	}
	return PricedItem{}, false
}

// SetManualPrice overwrites the price of the named item unconditionally.
// This is the only way to correct an estimated price, and later merges will
// not clobber it.
func SetManualPrice(l List, category, name string, price float64) error {
	items, ok := l[category]
	if !ok {
		return ErrItemNotFound
	}
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			items[i].Price = &price
			return nil
		}
	}
	return ErrItemNotFound
}

// ToggleChecked flips the shopping-progress flag of the named item. It has
// no effect on pricing or totals.
func ToggleChecked(l List, category, name string) error {
	items, ok := l[category]
	if !ok {
		return ErrItemNotFound
	}
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			items[i].Checked = !items[i].Checked
			return nil
		}
	}
	return ErrItemNotFound
}
