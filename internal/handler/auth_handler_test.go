package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTest() (*gin.Engine, *MockUserRepository, *MockAccountRepository, *MockTokenRepository, *config.Config) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	userRepo := new(MockUserRepository)
	accountRepo := new(MockAccountRepository)
	tokenRepo := new(MockTokenRepository)
	cfg := &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		FrontendURL:        "http://localhost:5173",
	}
	authHandler := handler.NewAuthHandler(userRepo, accountRepo, tokenRepo, cfg)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.POST("/auth/logout", authHandler.Logout)
	r.POST("/auth/forgot-password", authHandler.ForgotPassword)
	r.POST("/auth/reset-password", authHandler.ResetPassword)
	r.POST("/auth/migrate-users", authHandler.MigrateUsers)

	return r, userRepo, accountRepo, tokenRepo, cfg
}

func TestRegister_Success(t *testing.T) {
	router, userRepo, accountRepo, tokenRepo, _ := setupAuthTest()

	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	accountRepo.On("Register", mock.Anything, mock.AnythingOfType("*model.User"), "Acme").Return(nil)
	tokenRepo.On("CreateRefreshToken", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	resp := performJSON(router, "POST", "/auth/register", handler.RegisterRequest{
		Email:            "new@example.com",
		Password:         "password123",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		OrganizationName: "Acme",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	env := decodeEnvelope(resp.Body.Bytes())
	assert.True(t, env.Success)

	var data handler.AuthResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)
	assert.Equal(t, "Ada", data.User.FirstName)

	userRepo.AssertExpectations(t)
	accountRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestRegister_EmailTaken(t *testing.T) {
	router, userRepo, _, _, _ := setupAuthTest()

	existing := &model.User{ID: uuid.New(), Email: "taken@example.com"}
	userRepo.On("FindByEmail", mock.Anything, "taken@example.com").Return(existing, nil)

	resp := performJSON(router, "POST", "/auth/register", handler.RegisterRequest{
		Email:     "taken@example.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	env := decodeEnvelope(resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "Email already registered", env.Error.Message)

	userRepo.AssertExpectations(t)
}

func TestRegister_ValidationDetails(t *testing.T) {
	router, _, _, _, _ := setupAuthTest()

	resp := performJSON(router, "POST", "/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeEnvelope(resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
}

func TestLogin_Success(t *testing.T) {
	router, userRepo, _, tokenRepo, _ := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsActive:     true,
	}
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	tokenRepo.On("CreateRefreshToken", mock.Anything, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	resp := performJSON(router, "POST", "/auth/login", handler.LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(resp.Body.Bytes())
	var data handler.AuthResponse
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.Equal(t, user.ID, data.User.ID)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, userRepo, _, _, _ := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	user := &model.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	resp := performJSON(router, "POST", "/auth/login", handler.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid email or password", decodeEnvelope(resp.Body.Bytes()).Error.Message)
}

func TestLogin_UnknownEmail(t *testing.T) {
	router, userRepo, _, _, _ := setupAuthTest()

	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	resp := performJSON(router, "POST", "/auth/login", handler.LoginRequest{
		Email:    "ghost@example.com",
		Password: "password123",
	})

	// Unknown email is indistinguishable from a wrong password.
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid email or password", decodeEnvelope(resp.Body.Bytes()).Error.Message)
}

func TestLogin_InactiveUser(t *testing.T) {
	router, userRepo, _, _, _ := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: string(hash),
		IsActive:     false,
	}
	userRepo.On("FindByEmail", mock.Anything, "gone@example.com").Return(user, nil)

	resp := performJSON(router, "POST", "/auth/login", handler.LoginRequest{
		Email:    "gone@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_Success(t *testing.T) {
	router, _, _, tokenRepo, cfg := setupAuthTest()

	userID := uuid.New()
	refreshToken, err := auth.SignRefreshToken(cfg.RefreshTokenSecret, userID)
	assert.NoError(t, err)

	stored := &model.RefreshToken{
		ID:        uuid.New(),
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tokenRepo.On("FindRefreshToken", mock.Anything, refreshToken).Return(stored, nil)
	tokenRepo.On("RotateRefreshToken", mock.Anything, stored.ID, mock.AnythingOfType("*model.RefreshToken")).Return(nil)

	resp := performJSON(router, "POST", "/auth/refresh", handler.RefreshRequest{RefreshToken: refreshToken})

	assert.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(resp.Body.Bytes())
	var data map[string]string
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	tokenRepo.AssertExpectations(t)
}

func TestRefresh_RevokedToken(t *testing.T) {
	router, _, _, tokenRepo, cfg := setupAuthTest()

	userID := uuid.New()
	refreshToken, _ := auth.SignRefreshToken(cfg.RefreshTokenSecret, userID)

	revokedAt := time.Now().Add(-time.Minute)
	stored := &model.RefreshToken{
		ID:        uuid.New(),
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		RevokedAt: &revokedAt,
	}
	tokenRepo.On("FindRefreshToken", mock.Anything, refreshToken).Return(stored, nil)

	resp := performJSON(router, "POST", "/auth/refresh", handler.RefreshRequest{RefreshToken: refreshToken})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	tokenRepo.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_UnknownToken(t *testing.T) {
	router, _, _, tokenRepo, _ := setupAuthTest()

	tokenRepo.On("FindRefreshToken", mock.Anything, "no-such-token").Return(nil, nil)

	resp := performJSON(router, "POST", "/auth/refresh", handler.RefreshRequest{RefreshToken: "no-such-token"})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout(t *testing.T) {
	router, _, _, tokenRepo, _ := setupAuthTest()

	tokenRepo.On("RevokeRefreshToken", mock.Anything, "some-token").Return(nil)

	resp := performJSON(router, "POST", "/auth/logout", handler.RefreshRequest{RefreshToken: "some-token"})

	assert.Equal(t, http.StatusOK, resp.Code)
	tokenRepo.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	router, userRepo, _, tokenRepo, _ := setupAuthTest()

	userRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	resp := performJSON(router, "POST", "/auth/forgot-password", handler.ForgotPasswordRequest{
		Email: "ghost@example.com",
	})

	// Same generic message as the known-email path.
	assert.Equal(t, http.StatusOK, resp.Code)
	tokenRepo.AssertNotCalled(t, "CreateResetToken", mock.Anything, mock.Anything)
}

func TestForgotPassword_KnownEmail(t *testing.T) {
	router, userRepo, _, tokenRepo, _ := setupAuthTest()

	user := &model.User{ID: uuid.New(), Email: "ada@example.com", IsActive: true}
	userRepo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	tokenRepo.On("InvalidateResetTokens", mock.Anything, user.ID).Return(nil)
	tokenRepo.On("CreateResetToken", mock.Anything, mock.AnythingOfType("*model.PasswordResetToken")).Return(nil)

	resp := performJSON(router, "POST", "/auth/forgot-password", handler.ForgotPasswordRequest{
		Email: "ada@example.com",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	tokenRepo.AssertExpectations(t)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	router, _, _, tokenRepo, _ := setupAuthTest()

	stored := &model.PasswordResetToken{
		ID:        uuid.New(),
		Token:     "expired-token",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	tokenRepo.On("FindResetToken", mock.Anything, "expired-token").Return(stored, nil)

	resp := performJSON(router, "POST", "/auth/reset-password", handler.ResetPasswordRequest{
		Token:    "expired-token",
		Password: "new-password-123",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid or expired reset token", decodeEnvelope(resp.Body.Bytes()).Error.Message)
}

func TestMigrateUsers(t *testing.T) {
	router, _, accountRepo, _, _ := setupAuthTest()

	orgID := uuid.New()
	accountRepo.On("MigrateUsers", mock.Anything).Return(3, orgID, nil)

	resp := performJSON(router, "POST", "/auth/migrate-users", nil)

	assert.Equal(t, http.StatusOK, resp.Code)

	var data struct {
		MigratedCount  int       `json:"migratedCount"`
		OrganizationID uuid.UUID `json:"organizationId"`
	}
	assert.NoError(t, json.Unmarshal(decodeEnvelope(resp.Body.Bytes()).Data, &data))
	assert.Equal(t, 3, data.MigratedCount)
	assert.Equal(t, orgID, data.OrganizationID)

	accountRepo.AssertExpectations(t)
}

func TestResetPassword_Success(t *testing.T) {
	router, userRepo, _, tokenRepo, _ := setupAuthTest()

	user := &model.User{ID: uuid.New(), Email: "ada@example.com", IsActive: true}
	stored := &model.PasswordResetToken{
		ID:        uuid.New(),
		Token:     "good-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tokenRepo.On("FindResetToken", mock.Anything, "good-token").Return(stored, nil)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	tokenRepo.On("ResetPassword", mock.Anything, stored.ID, user.ID, mock.AnythingOfType("string")).Return(nil)

	resp := performJSON(router, "POST", "/auth/reset-password", handler.ResetPasswordRequest{
		Token:    "good-token",
		Password: "new-password-123",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	tokenRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}
