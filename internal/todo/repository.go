package todo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrTodoNotFound         = errors.New("todo not found")
	ErrTodoNotCreated       = errors.New("todo not created")
	ErrTodoNotUpdated       = errors.New("todo not updated")
	ErrTodoNotDeleted       = errors.New("todo not deleted")
	ErrUnresponsiveDatabase = errors.New("error occurred during writing to todos table")
)

type TodoRepository interface {
	Create(ctx context.Context, todo *Todo) error
	ReadByID(ctx context.Context, id uint) (*Todo, error)
	ReadAllByUserID(ctx context.Context, userID uint) ([]Todo, error)
	Update(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id uint) error
}

type todoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

func (r *todoRepository) Create(ctx context.Context, todo *Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return ErrTodoNotCreated
	}
	return nil
}

func (r *todoRepository) ReadByID(ctx context.Context, id uint) (*Todo, error) {
	var todo Todo
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&todo, id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTodoNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &todo, nil
}

func (r *todoRepository) ReadAllByUserID(ctx context.Context, userID uint) ([]Todo, error) {
	var todos []Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Find(&todos).
		Error
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return todos, nil
}

func (r *todoRepository) Update(ctx context.Context, todo *Todo) error {
	if err := r.db.WithContext(ctx).Save(todo).Error; err != nil {
		return ErrTodoNotUpdated
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Delete(&Todo{}, id).
		Error; err != nil {
		return ErrTodoNotDeleted
	}
	return nil
}
