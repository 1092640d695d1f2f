// Package grocery derives a priced, categorized shopping list from a meal
// plan and keeps it consistent as prices or items change.
package grocery

import (
	"strings"
	"time"
)

// Categories is the fixed set of buckets a grocery list is organized into.
// Persisted lists keep these exact names; pricing responses that use other
// names are folded into "Other".
var Categories = []string{
	"Proteins",
	"Vegetables",
	"Fruits",
	"Grains",
	"Dairy/Alternatives",
	"Spices/Condiments",
	"Other",
}

// Item is a single entry on a grocery list. Price and Unit stay nil until an
// estimate or a manual correction sets them.
type Item struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Price    *float64 `json:"price"`
	Unit     *string  `json:"unit"`
	Checked  bool     `json:"checked"`
}

// List maps category names to ordered items.
type List map[string][]Item

// NewList returns a list with every default category present and empty.
func NewList() List {
	l := make(List, len(Categories))
	for _, c := range Categories {
		l[c] = []Item{}
	}
	return l
}

// TotalCost recomputes the cost of the list: quantity times price, summed
// over all items, with nil prices counting as zero. The stored total on a
// persisted list is only a cache of this value.
func (l List) TotalCost() float64 {
	var total float64
	for _, items := range l {
		for _, it := range items {
			if it.Price == nil {
				continue
			}
			total += quantityOrDefault(it.Quantity) * *it.Price
		}
	}
	return total
}

// Clone returns a deep copy. Lists are owned by exactly one plan or one
// standalone list, so attaching one elsewhere requires an explicit copy.
func (l List) Clone() List {
	out := make(List, len(l))
	for cat, items := range l {
		copied := make([]Item, len(items))
		copy(copied, items)
		for i := range copied {
			if copied[i].Price != nil {
				p := *copied[i].Price
				copied[i].Price = &p
			}
			if copied[i].Unit != nil {
				u := *copied[i].Unit
				copied[i].Unit = &u
			}
		}
		out[cat] = copied
	}
	return out
}

func quantityOrDefault(q float64) float64 {
	if q <= 0 {
		return 1
	}
	return q
}

// CanonicalCategory maps a free-form category name onto the fixed set,
// falling back to "Other".
func CanonicalCategory(name string) string {
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return "Other"
}

// StandaloneList is a named grocery list that is not attached to a meal plan.
type StandaloneList struct {
	ID        string    `json:"id"`
	UserID    string    `json:"created_by"`
	Name      string    `json:"name"`
	Items     List      `json:"items"`
	TotalCost float64   `json:"total_cost"`
	CreatedAt time.Time `json:"created_at"`
}
