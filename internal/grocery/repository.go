package grocery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrListNotFound is returned when a standalone list does not exist or is
// owned by another user.
var ErrListNotFound = errors.New("grocery list not found")

// Repository handles persistence of standalone grocery lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new grocery list repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new standalone list. The total is always recomputed from
// the items before writing; the column is a cache, never authoritative.
func (r *Repository) Create(ctx context.Context, list *StandaloneList) error {
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.Items == nil {
		list.Items = NewList()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	list.TotalCost = list.Items.TotalCost()

	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal grocery items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO grocery_lists (id, user_id, name, items, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.Name, string(itemsJSON), list.TotalCost, list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert grocery list: %w", err)
	}
	return nil
}

// Get retrieves a list by ID, scoped to its owner.
func (r *Repository) Get(ctx context.Context, id, userID string) (*StandaloneList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, items, total_cost, created_at
		 FROM grocery_lists WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanList(row)
}

// ListByUser returns all standalone lists of a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*StandaloneList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, items, total_cost, created_at
		 FROM grocery_lists WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query grocery lists: %w", err)
	}
	defer rows.Close()

	var lists []*StandaloneList
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// Update persists name and items of an existing list, recomputing the total.
func (r *Repository) Update(ctx context.Context, list *StandaloneList) error {
	list.TotalCost = list.Items.TotalCost()

	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal grocery items: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE grocery_lists SET name = ?, items = ?, total_cost = ?
		 WHERE id = ? AND user_id = ?`,
		list.Name, string(itemsJSON), list.TotalCost, list.ID, list.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update grocery list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

// Delete removes a list owned by the user.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM grocery_lists WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete grocery list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*StandaloneList, error) {
	var (
		list      StandaloneList
		itemsJSON string
	)
	err := row.Scan(&list.ID, &list.UserID, &list.Name, &itemsJSON, &list.TotalCost, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan grocery list: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grocery items: %w", err)
	}
	return &list, nil
}
