package authentication

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFoundByGivenToken = errors.New("record not found by given token")
	ErrRecordAlreadyUsed          = errors.New("record already marked used")
	ErrUnresponsiveDatabase       = errors.New("error occurred during writing to records table")
)

type RecordRepository interface {
	Create(ctx context.Context, record *RefreshTokenRecord) error
	ReadByToken(ctx context.Context, token string) (*RefreshTokenRecord, error)
	MarkUsed(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Create(ctx context.Context, record *RefreshTokenRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create refresh token record: %w", err)
	}
	return nil
}

func (r *recordRepository) ReadByToken(ctx context.Context, token string) (*RefreshTokenRecord, error) {
	var record RefreshTokenRecord
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&record).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFoundByGivenToken
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &record, nil
}

// MarkUsed flips the used flag with a single conditional UPDATE. Two
// concurrent calls for the same token race on the used = false guard and
// exactly one sees RowsAffected = 1; the loser gets ErrRecordAlreadyUsed.
func (r *recordRepository) MarkUsed(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).
		Model(&RefreshTokenRecord{}).
		Where("token = ?", token).
		Where("used = ?", false).
		Update("used", true)
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	if res.RowsAffected == 0 {
		return ErrRecordAlreadyUsed
	}
	return nil
}

func (r *recordRepository) Revoke(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).
		Model(&RefreshTokenRecord{}).
		Where("token = ?", token).
		Update("revoked", true)
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFoundByGivenToken
	}
	return nil
}

func (r *recordRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&RefreshTokenRecord{}).
		Where("user_id = ?", userID).
		Where("revoked = ?", false).
		Update("revoked", true)
	if res.Error != nil {
		return ErrUnresponsiveDatabase
	}
	return nil
}
