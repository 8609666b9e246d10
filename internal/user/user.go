package user

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the set of possible user roles.
// @Description user role type: "admin" or "user"
type Role string

const (
	// Admin has full access
	Admin Role = "admin"
	// Member has limited access
	Member Role = "user"
)

// User represents an account in the system.
// swagger:model UserResponse
type User struct {
	gorm.Model
	// Email address (unique)
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	// Username (unique, shown in the UI)
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	// Password hash (hidden from JSON)
	Password string `json:"-"`
	// LastSeen indicates last activity time
	LastSeen time.Time `json:"last_seen"`
	// Role of the user
	Role Role `json:"role" gorm:"type:text;default:'user'"`
}

// NewUser initializes a new User with the default member role.
func NewUser(email, username, password string) *User {
	return &User{
		Email:    email,
		Username: username,
		Password: password,
		LastSeen: time.Now().UTC(),
		Role:     Member,
	}
}
