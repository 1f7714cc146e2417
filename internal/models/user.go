package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	LevelTag  string    `json:"level_tag" db:"level_tag"`
	Gender    string    `json:"gender,omitempty" db:"gender"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AsAuthor snapshots the user as a comment author
func (u *User) AsAuthor() Author {
	return Author{
		ID:       u.ID,
		Name:     u.Name,
		Avatar:   u.Avatar,
		LevelTag: u.LevelTag,
	}
}

// ValidGenders defines allowed profile genders
var ValidGenders = map[string]bool{
	"MALE":   true,
	"FEMALE": true,
}

// DefaultLevelTag is assigned to newly registered users
const DefaultLevelTag = "Fan"

// LoginRequest is the body of a mock login / registration
type LoginRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"omitempty,max=64"`
	Gender string `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
}

// ProfileUpdate is the body of a profile edit
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=64"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url"`
	Gender *string `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
}
