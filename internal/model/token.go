package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is persisted so refresh tokens can be revoked server-side.
// Rotation revokes the presented token and issues a new row.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *RefreshToken) Valid(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

type PasswordResetToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && t.ExpiresAt.After(now)
}
