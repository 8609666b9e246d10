package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotCreated        = errors.New("user not created")
	ErrUserNotUpdated        = errors.New("user not updated")
	ErrUserNotDeleted        = errors.New("user not deleted")
	ErrUnresponsiveDatabase  = errors.New("error occurred during writing to users table")
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	ReadByEmail(ctx context.Context, email string) (*User, error)
	ReadByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return dup
		}
		return ErrUserNotCreated
	}
	return nil
}

func (r *userRepository) ReadByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&user, id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &user, nil
}

func (r *userRepository) ReadByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Where("deleted_at IS NULL").
		First(&user).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return dup
		}
		return ErrUserNotUpdated
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Delete(&User{}, id).
		Error; err != nil {
		return ErrUserNotDeleted
	}
	return nil
}

// duplicateKeyError maps a postgres unique violation to the matching
// sentinel, or returns nil when the error is something else.
func duplicateKeyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailAlreadyExists
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameAlreadyExists
	}
	return ErrUserNotCreated
}
