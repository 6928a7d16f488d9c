package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

// genericResetMessage is returned for every forgot-password request so the
// response cannot be used to probe which emails have accounts.
const genericResetMessage = "If an account exists, a reset link has been sent"

type AuthHandler struct {
	userRepo    repository.UserRepositoryInterface
	accountRepo repository.AccountRepositoryInterface
	tokenRepo   repository.TokenRepositoryInterface
	cfg         *config.Config
}

func NewAuthHandler(
	userRepo repository.UserRepositoryInterface,
	accountRepo repository.AccountRepositoryInterface,
	tokenRepo repository.TokenRepositoryInterface,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		cfg:         cfg,
	}
}

type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName" binding:"required"`
	OrganizationName string `json:"organizationName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         model.UserSummary `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// Register creates the user and, in the same transaction, the seed tenant:
// default-organization membership plus either the named organization with a
// fully populated starter workspace, or a personal workspace.
//
// @Summary  Register a new user
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Param    request body RegisterRequest true "Registration data"
// @Success  201 {object} AuthResponse
// @Router   /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	req.Email = strings.ToLower(req.Email)

	existing, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing != nil {
		respondError(c, apperr.Conflict("Email already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}

	if err := h.accountRepo.Register(c.Request.Context(), user, req.OrganizationName); err != nil {
		respondError(c, err)
		return
	}

	response, err := h.issueTokens(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, response)
}

// Login verifies credentials and issues a fresh token pair. Unknown email,
// inactive account and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, apperr.Unauthorized("Invalid email or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, apperr.Unauthorized("Invalid email or password"))
		return
	}

	response, err := h.issueTokens(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, response)
}

// Refresh rotates the refresh token: the presented token must be stored,
// unrevoked, unexpired and verifiable; it is revoked and replaced in one
// step, so presenting it a second time fails.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	stored, err := h.tokenRepo.FindRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	if stored == nil || !stored.Valid(time.Now()) {
		respondError(c, apperr.Unauthorized("Invalid or expired refresh token"))
		return
	}

	userID, err := auth.ParseToken(h.cfg.RefreshTokenSecret, req.RefreshToken)
	if err != nil {
		respondError(c, apperr.Unauthorized("Invalid refresh token"))
		return
	}

	accessToken, err := auth.SignAccessToken(h.cfg.AccessTokenSecret, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	refreshToken, err := auth.SignRefreshToken(h.cfg.RefreshTokenSecret, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	replacement := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: auth.RefreshTokenExpiry(),
	}
	if err := h.tokenRepo.RotateRefreshToken(c.Request.Context(), stored.ID, replacement); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if err := h.tokenRepo.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Logged out successfully")
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondMessage(c, genericResetMessage)
		return
	}

	if err := h.tokenRepo.InvalidateResetTokens(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		respondError(c, err)
		return
	}
	resetToken := hex.EncodeToString(raw)

	if err := h.tokenRepo.CreateResetToken(c.Request.Context(), &model.PasswordResetToken{
		Token:     resetToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}); err != nil {
		respondError(c, err)
		return
	}

	// No email service yet; surface the link in the server log.
	log.Printf("🔑 Password reset link: %s/reset-password?token=%s", h.cfg.FrontendURL, resetToken)

	respondMessage(c, genericResetMessage)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resetToken, err := h.tokenRepo.FindResetToken(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	if resetToken == nil || !resetToken.Usable(time.Now()) {
		respondError(c, apperr.BadRequest("Invalid or expired reset token"))
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), resetToken.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, apperr.BadRequest("Account is inactive"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.tokenRepo.ResetPassword(c.Request.Context(), resetToken.ID, user.ID, string(hash)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password reset successfully")
}

// MigrateUsers is an ops endpoint: it backfills every user missing a
// default-organization membership. Idempotent, so re-running reports zero.
func (h *AuthHandler) MigrateUsers(c *gin.Context) {
	migrated, orgID, err := h.accountRepo.MigrateUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"migratedCount":  migrated,
		"organizationId": orgID,
	})
}

func (h *AuthHandler) issueTokens(c *gin.Context, user *model.User) (*AuthResponse, error) {
	accessToken, err := auth.SignAccessToken(h.cfg.AccessTokenSecret, user.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := auth.SignRefreshToken(h.cfg.RefreshTokenSecret, user.ID)
	if err != nil {
		return nil, err
	}

	if err := h.tokenRepo.CreateRefreshToken(c.Request.Context(), &model.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: auth.RefreshTokenExpiry(),
	}); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.Summary(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
