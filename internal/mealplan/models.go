// Package mealplan holds the day-by-day meal plan model, its AI generator
// and its repository.
package mealplan

import (
	"time"

	"nutriplan/internal/grocery"
)

// Meal is a single dish assigned to a slot.
type Meal struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	Protein     *float64 `json:"protein,omitempty"`
	Carbs       *float64 `json:"carbs,omitempty"`
	Fat         *float64 `json:"fat,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// Day maps the four fixed meal slots to optional meals.
type Day struct {
	Breakfast *Meal `json:"breakfast,omitempty"`
	Lunch     *Meal `json:"lunch,omitempty"`
	Dinner    *Meal `json:"dinner,omitempty"`
	Snack     *Meal `json:"snack,omitempty"`
}

// Meals returns the assigned meals of the day in slot order.
func (d Day) Meals() []*Meal {
	var meals []*Meal
	for _, m := range []*Meal{d.Breakfast, d.Lunch, d.Dinner, d.Snack} {
		if m != nil {
			meals = append(meals, m)
		}
	}
	return meals
}

// MealPlan is a named, owned collection of day-by-day meal assignments with
// an optional attached grocery list.
type MealPlan struct {
	ID          string       `json:"id"`
	UserID      string       `json:"created_by"`
	Name        string       `json:"name"`
	DietType    string       `json:"diet_type,omitempty"`
	Days        []Day        `json:"days"`
	GroceryList grocery.List `json:"grocery_list,omitempty"`
	TotalCost   *float64     `json:"total_cost,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// MealSources flattens the plan into the extraction view of the grocery
// engine. Unnamed meals are skipped, so a malformed plan simply contributes
// nothing.
func (p *MealPlan) MealSources() []grocery.MealSource {
	var sources []grocery.MealSource
	for _, day := range p.Days {
		for _, meal := range day.Meals() {
			if meal.Name == "" && len(meal.Ingredients) == 0 {
				continue
			}
			sources = append(sources, grocery.MealSource{
				Name:        meal.Name,
				Ingredients: meal.Ingredients,
			})
		}
	}
	return sources
}
