// Package user holds account and preference models and their repository.
package user

import "time"

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Preferences are the diet-planning defaults a user has saved.
type Preferences struct {
	UserID             string `json:"-"`
	HealthGoal         string `json:"health_goal"`
	FoodsLiked         string `json:"foods_liked"`
	FoodsAvoided       string `json:"foods_avoided"`
	CustomRequirements string `json:"custom_requirements"`
	NumPeople          int    `json:"num_people"`
}
