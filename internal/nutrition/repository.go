package nutrition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrLogNotFound is returned when a log does not exist or is owned by
	// another user.
	ErrLogNotFound = errors.New("nutrition log not found")
	// ErrGoalNotFound is returned when a goal does not exist or is owned by
	// another user.
	ErrGoalNotFound = errors.New("nutrition goal not found")
)

// Repository handles persistence of nutrition logs and goals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new nutrition repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateLog stores a new log entry. Missing dates default to today and
// servings below one are clamped, so a sparse client payload still makes a
// coherent record.
func (r *Repository) CreateLog(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.LogDate == "" {
		l.LogDate = l.CreatedAt.Format("2006-01-02")
	}
	if l.Servings < 1 {
		l.Servings = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nutrition_logs (id, user_id, recipe_name, meal_type, log_date, calories, protein, carbs, fat, servings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.RecipeName, l.MealType, l.LogDate,
		l.Calories, l.Protein, l.Carbs, l.Fat, l.Servings, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert nutrition log: %w", err)
	}
	return nil
}

// GetLog retrieves a log by ID, scoped to its owner.
func (r *Repository) GetLog(ctx context.Context, id, userID string) (*Log, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, recipe_name, meal_type, log_date, calories, protein, carbs, fat, servings, created_at
		 FROM nutrition_logs WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var l Log
	err := row.Scan(&l.ID, &l.UserID, &l.RecipeName, &l.MealType, &l.LogDate,
		&l.Calories, &l.Protein, &l.Carbs, &l.Fat, &l.Servings, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan nutrition log: %w", err)
	}
	return &l, nil
}

// ListLogsByUser returns the logs of a user, newest log date first. An empty
// date filter returns everything.
func (r *Repository) ListLogsByUser(ctx context.Context, userID, date string) ([]*Log, error) {
	query := `SELECT id, user_id, recipe_name, meal_type, log_date, calories, protein, carbs, fat, servings, created_at
	 FROM nutrition_logs WHERE user_id = ?`
	args := []any{userID}
	if date != "" {
		query += ` AND log_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY log_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition logs: %w", err)
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		var l Log
		err := rows.Scan(&l.ID, &l.UserID, &l.RecipeName, &l.MealType, &l.LogDate,
			&l.Calories, &l.Protein, &l.Carbs, &l.Fat, &l.Servings, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nutrition log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// UpdateLog persists the mutable fields of an existing log.
func (r *Repository) UpdateLog(ctx context.Context, l *Log) error {
	if l.Servings < 1 {
		l.Servings = 1
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE nutrition_logs SET recipe_name = ?, meal_type = ?, log_date = ?, calories = ?, protein = ?, carbs = ?, fat = ?, servings = ?
		 WHERE id = ? AND user_id = ?`,
		l.RecipeName, l.MealType, l.LogDate, l.Calories, l.Protein, l.Carbs, l.Fat, l.Servings,
		l.ID, l.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update nutrition log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	return nil
}

// DeleteLog removes a log owned by the user.
func (r *Repository) DeleteLog(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM nutrition_logs WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete nutrition log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLogNotFound
	}
	return nil
}

// CreateGoal stores a new goal. An active goal deactivates the user's other
// active goals of the same type, so "the active daily goal" is always
// unambiguous.
func (r *Repository) CreateGoal(ctx context.Context, g *Goal) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.GoalType == "" {
		g.GoalType = "daily"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if g.IsActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE nutrition_goals SET is_active = 0 WHERE user_id = ? AND goal_type = ? AND is_active = 1`,
			g.UserID, g.GoalType,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous goals: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO nutrition_goals (id, user_id, goal_type, target_calories, target_protein, target_carbs, target_fat, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.GoalType,
		g.TargetCalories, g.TargetProtein, g.TargetCarbs, g.TargetFat,
		g.IsActive, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert nutrition goal: %w", err)
	}
	return tx.Commit()
}

// ListGoalsByUser returns all goals of a user, newest first.
func (r *Repository) ListGoalsByUser(ctx context.Context, userID string) ([]*Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, goal_type, target_calories, target_protein, target_carbs, target_fat, is_active, created_at
		 FROM nutrition_goals WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition goals: %w", err)
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		var g Goal
		err := rows.Scan(&g.ID, &g.UserID, &g.GoalType,
			&g.TargetCalories, &g.TargetProtein, &g.TargetCarbs, &g.TargetFat,
			&g.IsActive, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nutrition goal: %w", err)
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// UpdateGoal persists the mutable fields of an existing goal, keeping the
// one-active-goal-per-type rule when the goal is activated.
func (r *Repository) UpdateGoal(ctx context.Context, g *Goal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if g.IsActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE nutrition_goals SET is_active = 0 WHERE user_id = ? AND goal_type = ? AND is_active = 1 AND id != ?`,
			g.UserID, g.GoalType, g.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate previous goals: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE nutrition_goals SET goal_type = ?, target_calories = ?, target_protein = ?, target_carbs = ?, target_fat = ?, is_active = ?
		 WHERE id = ? AND user_id = ?`,
		g.GoalType, g.TargetCalories, g.TargetProtein, g.TargetCarbs, g.TargetFat, g.IsActive,
		g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update nutrition goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGoalNotFound
	}
	return tx.Commit()
}

// DeleteGoal removes a goal owned by the user.
func (r *Repository) DeleteGoal(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM nutrition_goals WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete nutrition goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGoalNotFound
	}
	return nil
}
