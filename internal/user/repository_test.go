package user

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"nutriplan/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.SQL
}

func TestCreateAndGetUser(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	u := &User{Email: "  Test@Example.COM ", PasswordHash: "hash", FullName: "Test User"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}
	if u.Email != "test@example.com" {
		t.Errorf("email not normalized: %q", u.Email)
	}

	byEmail, err := repo.GetByEmail(ctx, "TEST@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetByEmail() returned ID %q, want %q", byEmail.ID, u.ID)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.FullName != "Test User" {
		t.Errorf("FullName = %q", byID.FullName)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &User{Email: "dup@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, &User{Email: "DUP@example.com", PasswordHash: "h"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestGetUnknownUser(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail() err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() err = %v, want ErrNotFound", err)
	}
}

func TestPreferencesDefaultWhenUnsaved(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	prefs, err := repo.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if prefs.UserID != "user-1" || prefs.NumPeople != 1 {
		t.Errorf("defaults = %+v, want NumPeople 1", prefs)
	}
}

func TestSavePreferencesUpserts(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	u := &User{Email: "prefs@example.com", PasswordHash: "h"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p := &Preferences{UserID: u.ID, HealthGoal: "weight loss", FoodsLiked: "fish", NumPeople: 2}
	if err := repo.SavePreferences(ctx, p); err != nil {
		t.Fatalf("SavePreferences() error = %v", err)
	}

	p.HealthGoal = "maintenance"
	p.NumPeople = 0 // invalid, must be clamped
	if err := repo.SavePreferences(ctx, p); err != nil {
		t.Fatalf("SavePreferences() second call error = %v", err)
	}

	got, err := repo.GetPreferences(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetPreferences() error = %v", err)
	}
	if got.HealthGoal != "maintenance" {
		t.Errorf("HealthGoal = %q, want maintenance", got.HealthGoal)
	}
	if got.FoodsLiked != "fish" {
		t.Errorf("FoodsLiked = %q", got.FoodsLiked)
	}
	if got.NumPeople != 1 {
		t.Errorf("NumPeople = %d, want 1 after clamping", got.NumPeople)
	}
}
