package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nutriplan/internal/grocery"
)

// ErrMealNotFound is returned when a favorite meal does not exist or is
// owned by another user.
var ErrMealNotFound = errors.New("favorite meal not found")

// Repository handles persistence of favorite meals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new favorite meal repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save stores a favorite meal. The cached total is recomputed from the
// attached grocery list when one is present.
func (r *Repository) Save(ctx context.Context, meal *FavoriteMeal) error {
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now().UTC()
	}

	ingredients, err := json.Marshal(meal.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructions, err := json.Marshal(meal.Instructions)
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}

	var (
		listJSON  sql.NullString
		totalCost sql.NullFloat64
	)
	if meal.GroceryList != nil {
		items, merr := json.Marshal(meal.GroceryList)
		if merr != nil {
			return fmt.Errorf("failed to marshal grocery list: %w", merr)
		}
		listJSON = sql.NullString{String: string(items), Valid: true}

		total := meal.GroceryList.TotalCost()
		meal.TotalCost = &total
		totalCost = sql.NullFloat64{Float64: total, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO favorite_meals
		 (id, user_id, name, meal_type, calories, protein, carbs, fat, ingredients, instructions, prep_time, difficulty, grocery_list, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.UserID, meal.Name, meal.MealType,
		nullableFloat(meal.Calories), nullableFloat(meal.Protein), nullableFloat(meal.Carbs), nullableFloat(meal.Fat),
		string(ingredients), string(instructions), meal.PrepTime, meal.Difficulty,
		listJSON, totalCost, meal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert favorite meal: %w", err)
	}
	return nil
}

// ListByUser returns the favorite meals of a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*FavoriteMeal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, meal_type, calories, protein, carbs, fat, ingredients, instructions, prep_time, difficulty, grocery_list, total_cost, created_at
		 FROM favorite_meals WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite meals: %w", err)
	}
	defer rows.Close()

	var meals []*FavoriteMeal
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

// Delete removes a favorite meal owned by the user.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorite_meals WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete favorite meal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMealNotFound
	}
	return nil
}

func nullableFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func scanMeal(rows *sql.Rows) (*FavoriteMeal, error) {
	var (
		meal                      FavoriteMeal
		calories, protein         sql.NullFloat64
		carbs, fat, totalCost     sql.NullFloat64
		ingredients, instructions string
		listJSON                  sql.NullString
	)
	err := rows.Scan(&meal.ID, &meal.UserID, &meal.Name, &meal.MealType,
		&calories, &protein, &carbs, &fat,
		&ingredients, &instructions, &meal.PrepTime, &meal.Difficulty,
		&listJSON, &totalCost, &meal.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan favorite meal: %w", err)
	}

	if calories.Valid {
		meal.Calories = &calories.Float64
	}
	if protein.Valid {
		meal.Protein = &protein.Float64
	}
	if carbs.Valid {
		meal.Carbs = &carbs.Float64
	}
	if fat.Valid {
		meal.Fat = &fat.Float64
	}
	if totalCost.Valid {
		meal.TotalCost = &totalCost.Float64
	}
	if err := json.Unmarshal([]byte(ingredients), &meal.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(instructions), &meal.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
	}
	if listJSON.Valid {
		var list grocery.List
		if err := json.Unmarshal([]byte(listJSON.String), &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal grocery list: %w", err)
		}
		meal.GroceryList = list
	}
	return &meal, nil
}
