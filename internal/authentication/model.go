package authentication

import (
	"time"

	"gorm.io/gorm"
)

// RefreshTokenRecord is the server-side state of one issued refresh token.
// The opaque Token string is the lookup key; JTI binds the record to the
// access token minted in the same issuance. Records are flagged, never
// physically deleted, so a replayed token stays recognizable.
type RefreshTokenRecord struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null"`
	Token     string    `gorm:"uniqueIndex;not null"`
	JTI       string    `gorm:"index;not null"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Used      bool      `gorm:"not null;default:false"`
	Revoked   bool      `gorm:"not null;default:false"`
}

// Usable reports whether the record can still be redeemed for rotation.
func (r *RefreshTokenRecord) Usable(now time.Time) bool {
	return !r.Used && !r.Revoked && now.Before(r.ExpiresAt)
}
