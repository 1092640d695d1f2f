package mealplan

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

// ErrPlanNotFound is returned when a plan does not exist or is owned by
// another user.
var ErrPlanNotFound = errors.New("meal plan not found")

// Repository handles persistence of meal plans.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new meal plan repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new meal plan.
func (r *Repository) Create(ctx context.Context, plan *MealPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	daysJSON, listJSON, totalCost, err := marshalPlan(plan)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, name, diet_type, days, grocery_list, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.UserID, plan.Name, plan.DietType, daysJSON, listJSON, totalCost, plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// Get retrieves a plan by ID, scoped to its owner.
func (r *Repository) Get(ctx context.Context, id, userID string) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, diet_type, days, grocery_list, total_cost, created_at
		 FROM meal_plans WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanPlan(row)
}

// ListByUser returns all plans of a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*MealPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, diet_type, days, grocery_list, total_cost, created_at
		 FROM meal_plans WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal plans: %w", err)
	}
	defer rows.Close()

	var plans []*MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Update persists the mutable fields of an existing plan. The cached total
// cost is recomputed from the attached grocery list on every write.
func (r *Repository) Update(ctx context.Context, plan *MealPlan) error {
	daysJSON, listJSON, totalCost, err := marshalPlan(plan)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_plans SET name = ?, diet_type = ?, days = ?, grocery_list = ?, total_cost = ?
		 WHERE id = ? AND user_id = ?`,
		plan.Name, plan.DietType, daysJSON, listJSON, totalCost, plan.ID, plan.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Delete removes a plan owned by the user.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_plans WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func marshalPlan(plan *MealPlan) (daysJSON string, listJSON sql.NullString, totalCost sql.NullFloat64, err error) {
	days, err := json.Marshal(plan.Days)
	if err != nil {
		return "", sql.NullString{}, sql.NullFloat64{}, fmt.Errorf("failed to marshal plan days: %w", err)
	}

	if plan.GroceryList != nil {
		items, merr := json.Marshal(plan.GroceryList)
		if merr != nil {
			return "", sql.NullString{}, sql.NullFloat64{}, fmt.Errorf("failed to marshal grocery list: %w", merr)
		}
		listJSON = sql.NullString{String: string(items), Valid: true}

		total := plan.GroceryList.TotalCost()
		plan.TotalCost = &total
		totalCost = sql.NullFloat64{Float64: total, Valid: true}
	} else {
		plan.TotalCost = nil
	}

	return string(days), listJSON, totalCost, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*MealPlan, error) {
	var (
		plan      MealPlan
		daysJSON  string
		listJSON  sql.NullString
		totalCost sql.NullFloat64
	)
	err := row.Scan(&plan.ID, &plan.UserID, &plan.Name, &plan.DietType, &daysJSON, &listJSON, &totalCost, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meal plan: %w", err)
	}

	if err := json.Unmarshal([]byte(daysJSON), &plan.Days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan days: %w", err)
	}
	if listJSON.Valid {
		var list grocery.List
		if err := json.Unmarshal([]byte(listJSON.String), &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal grocery list: %w", err)
		}
		plan.GroceryList = list
	}
	if totalCost.Valid {
		plan.TotalCost = &totalCost.Float64
	}
	return &plan, nil
}
