package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository manages refresh tokens and password reset tokens.
type TokenRepository struct {
	db *gorm.DB
}

type TokenRepositoryInterface interface {
	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID uuid.UUID, replacement *model.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, token string) error
	CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error
	FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	InvalidateResetTokens(ctx context.Context, userID uuid.UUID) error
	ResetPassword(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) error
}

var _ TokenRepositoryInterface = (*TokenRepository)(nil)

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var stored model.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stored, err
}

// RotateRefreshToken revokes the presented token and stores its replacement
// in one transaction, so a crash cannot leave both usable copies behind.
func (r *TokenRepository) RotateRefreshToken(ctx context.Context, oldID uuid.UUID, replacement *model.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.RefreshToken{}).
			Where("id = ?", oldID).
			Update("revoked_at", time.Now()).Error; err != nil {
			return err
		}
		return tx.Create(replacement).Error
	})
}

// RevokeRefreshToken marks the token revoked. Already-revoked or unknown
// tokens are a no-op, which makes logout idempotent.
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Model(&model.RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", time.Now()).Error
}

func (r *TokenRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *TokenRepository) FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var stored model.PasswordResetToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stored, err
}

func (r *TokenRepository) InvalidateResetTokens(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("user_id = ? AND used_at IS NULL", userID).
		Update("used_at", time.Now()).Error
}

// ResetPassword applies the whole reset in one transaction: new password
// hash, consume the reset token, revoke every outstanding refresh token.
func (r *TokenRepository) ResetPassword(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.PasswordResetToken{}).
			Where("id = ?", tokenID).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&model.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", userID).
			Update("revoked_at", now).Error
	})
}
