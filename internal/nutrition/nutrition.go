// Package nutrition tracks what a user ate and the macro targets they are
// aiming for.
package nutrition

import "time"

// Log is one logged eating event: a meal or snack with its macros.
type Log struct {
	ID         string    `json:"id"`
	UserID     string    `json:"created_by"`
	RecipeName string    `json:"recipe_name"`
	MealType   string    `json:"meal_type,omitempty"`
	LogDate    string    `json:"log_date"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
	Servings   float64   `json:"servings"`
	CreatedAt  time.Time `json:"created_at"`
}

// Goal is a macro target. A user keeps at most one active goal per goal
// type; activating a new one deactivates the others.
type Goal struct {
	ID             string    `json:"id"`
	UserID         string    `json:"created_by"`
	GoalType       string    `json:"goal_type"`
	TargetCalories float64   `json:"target_calories"`
	TargetProtein  float64   `json:"target_protein"`
	TargetCarbs    float64   `json:"target_carbs"`
	TargetFat      float64   `json:"target_fat"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
