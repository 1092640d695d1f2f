package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository handles persistence of users and their preferences.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new user repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new user.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, full_name, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, full_name, created_at FROM users WHERE id = ?`, id)
}

func (r *Repository) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetPreferences returns the saved preferences of a user, or defaults when
// none have been saved yet.
func (r *Repository) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	var p Preferences
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, health_goal, foods_liked, foods_avoided, custom_requirements, num_people
		 FROM user_preferences WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.HealthGoal, &p.FoodsLiked, &p.FoodsAvoided, &p.CustomRequirements, &p.NumPeople)
	if err == sql.ErrNoRows {
		return &Preferences{UserID: userID, NumPeople: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &p, nil
}

// SavePreferences upserts the preferences of a user.
func (r *Repository) SavePreferences(ctx context.Context, p *Preferences) error {
	if p.NumPeople < 1 {
		p.NumPeople = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, health_goal, foods_liked, foods_avoided, custom_requirements, num_people)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   health_goal = excluded.health_goal,
		   foods_liked = excluded.foods_liked,
		   foods_avoided = excluded.foods_avoided,
		   custom_requirements = excluded.custom_requirements,
		   num_people = excluded.num_people`,
		p.UserID, p.HealthGoal, p.FoodsLiked, p.FoodsAvoided, p.CustomRequirements, p.NumPeople,
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
