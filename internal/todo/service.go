package todo

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrEmptyTitle = errors.New("title must not be empty")
	ErrNotOwner   = errors.New("todo belongs to a different user")
)

type TodoService interface {
	CreateTodo(ctx context.Context, userID uint, title, description string) (*Todo, error)
	ReadTodo(ctx context.Context, userID, id uint) (*Todo, error)
	ListTodos(ctx context.Context, userID uint) ([]Todo, error)
	UpdateTodo(ctx context.Context, userID, id uint, title, description string, done bool) (*Todo, error)
	DeleteTodo(ctx context.Context, userID, id uint) error
}

type todoService struct {
	repo   TodoRepository
	logger *zap.Logger
}

func NewTodoService(repo TodoRepository, logger *zap.Logger) TodoService {
	return &todoService{
		repo:   repo,
		logger: logger,
	}
}

func (s *todoService) CreateTodo(ctx context.Context, userID uint, title, description string) (*Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	todo := NewTodo(userID, title, description)
	if err := s.repo.Create(ctx, todo); err != nil {
		s.logger.Error("failed to create todo", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	return todo, nil
}

// readOwned loads a todo and enforces that it belongs to the caller. A
// foreign item is reported as not found so that IDs are not probeable.
func (s *todoService) readOwned(ctx context.Context, userID, id uint) (*Todo, error) {
	todo, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo.UserID != userID {
		s.logger.Warn("cross-user todo access attempt", zap.Uint("userID", userID), zap.Uint("todoID", id))
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func (s *todoService) ReadTodo(ctx context.Context, userID, id uint) (*Todo, error) {
	return s.readOwned(ctx, userID, id)
}

func (s *todoService) ListTodos(ctx context.Context, userID uint) ([]Todo, error) {
	todos, err := s.repo.ReadAllByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list todos", zap.Uint("userID", userID), zap.Error(err))
		return nil, err
	}
	return todos, nil
}

func (s *todoService) UpdateTodo(ctx context.Context, userID, id uint, title, description string, done bool) (*Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	todo, err := s.readOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.Title = title
	todo.Description = description
	todo.Done = done
	if err := s.repo.Update(ctx, todo); err != nil {
		s.logger.Error("failed to update todo", zap.Uint("todoID", id), zap.Error(err))
		return nil, err
	}
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, userID, id uint) error {
	if _, err := s.readOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete todo", zap.Uint("todoID", id), zap.Error(err))
		return err
	}
	return nil
}
