package todo

import "gorm.io/gorm"

// Todo represents a single to-do item owned by a user.
// swagger:model TodoResponse
type Todo struct {
	gorm.Model
	// UserID is the owning user
	UserID uint `json:"user_id" gorm:"index;not null"`
	// Title of the item
	Title string `json:"title" gorm:"not null"`
	// Description with optional detail
	Description string `json:"description"`
	// Done marks the item completed
	Done bool `json:"done" gorm:"not null;default:false"`
}

// NewTodo initializes an open to-do item for the given owner.
func NewTodo(userID uint, title, description string) *Todo {
	return &Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Done:        false,
	}
}
