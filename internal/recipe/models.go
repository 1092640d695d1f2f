// Package recipe generates recipes with the LLM, imports them from web
// pages and stores the ones a user keeps.
package recipe

import (
	"time"

	"nutriplan/internal/grocery"
)

// Ingredient is one recipe ingredient with its quantity as free text.
type Ingredient struct {
	Quantity string `json:"quantity"`
	Item     string `json:"item"`
}

// Nutrition holds estimated facts per serving.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// GeneratedRecipe is the structured answer of a generation or import call.
type GeneratedRecipe struct {
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   []string     `json:"instructions"`
	Nutrition      Nutrition    `json:"nutrition"`
	PrepTime       string       `json:"prep_time,omitempty"`
	CookTime       string       `json:"cook_time,omitempty"`
	Tips           string       `json:"tips,omitempty"`
	HealthBenefits string       `json:"health_benefits,omitempty"`
}

// IngredientNames renders the ingredients as "quantity item" strings, the
// form the grocery pricing flow tokenizes.
func (r *GeneratedRecipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.Quantity != "" {
			names = append(names, ing.Quantity+" "+ing.Item)
		} else {
			names = append(names, ing.Item)
		}
	}
	return names
}

// FavoriteMeal is a saved recipe with its optional priced grocery list.
type FavoriteMeal struct {
	ID           string       `json:"id"`
	UserID       string       `json:"created_by"`
	Name         string       `json:"name"`
	MealType     string       `json:"meal_type,omitempty"`
	Calories     *float64     `json:"calories,omitempty"`
	Protein      *float64     `json:"protein,omitempty"`
	Carbs        *float64     `json:"carbs,omitempty"`
	Fat          *float64     `json:"fat,omitempty"`
	Ingredients  []string     `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	PrepTime     string       `json:"prep_time,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	GroceryList  grocery.List `json:"grocery_list,omitempty"`
	TotalCost    *float64     `json:"total_cost,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
