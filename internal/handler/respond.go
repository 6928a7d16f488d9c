package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Every response is wrapped: {success:true,data} on the happy path,
// {success:false,error:{message,details?}} otherwise.

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, message string) {
	respondOK(c, gin.H{"message": message})
}

// respondError maps apperr kinds to their status; anything else is a
// generic 500 that never leaks internals.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"success": false, "error": appErr})
		return
	}

	log.Printf("⚠️  Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   gin.H{"message": "Internal server error"},
	})
}

// bindError converts a ShouldBindJSON failure into BadRequest with a
// per-field detail map when the failure came from validation tags.
func bindError(err error) *apperr.Error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.BadRequest("Invalid request body")
	}

	details := make(map[string][]string)
	for _, fieldErr := range validationErrs {
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]
		details[field] = append(details[field], validationMessage(fieldErr))
	}
	return apperr.BadRequest("Validation failed").WithDetails(details)
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldErr.Param() + " characters"
	case "uuid":
		return "must be a valid uuid"
	case "oneof":
		return "must be one of: " + fieldErr.Param()
	default:
		return "is invalid"
	}
}

// currentUserID pulls the authenticated user id set by the auth middleware.
// It writes the error response itself when the id is missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondError(c, apperr.Unauthorized("Not authenticated"))
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		respondError(c, errors.New("user id in context has unexpected type"))
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a uuid path parameter, responding with BadRequest on
// malformed input.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperr.BadRequest("Invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}

// jsonValue marshals v into a JSON column payload for activity entries.
func jsonValue(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
