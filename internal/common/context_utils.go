package common

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	IsAdminKey contextKey = "is_admin"
)

// GetUserIDFromContext extracts the authenticated user ID set by the JWT middleware
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// IsAdminFromContext reports whether the authenticated user has the admin role
func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(IsAdminKey).(bool)
	return ok && isAdmin
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendConflictError sends a conflict error response
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidatePositiveInteger validates positive integer values with upper bounds
func ValidatePositiveInteger(value int, fieldName string, maxValue int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %d", fieldName, maxValue)
	}
	return nil
}

// ValidatePositiveFloat validates positive float values with upper bounds
func ValidatePositiveFloat(value float64, fieldName string, maxValue float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %.2f", fieldName, maxValue)
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

var pinCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// ValidatePINCode validates Indian postal codes (6 digits, no leading zero)
func ValidatePINCode(pin, fieldName string) error {
	if !pinCodePattern.MatchString(strings.TrimSpace(pin)) {
		return fmt.Errorf("%s must be a valid 6-digit PIN code", fieldName)
	}
	return nil
}

// ValidateOrderStatus validates order status values
func ValidateOrderStatus(status string) error {
	validStatuses := map[string]bool{
		"pending": true, "confirmed": true, "processing": true,
		"shipped": true, "delivered": true, "cancelled": true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("order status must be one of: pending, confirmed, processing, shipped, delivered, cancelled")
	}
	return nil
}

// ValidatePaginationParams clamps limit/offset to safe bounds
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("offset cannot be negative")
	}
	return limit, offset, nil
}

// SanitizeSearchQuery strips characters that would leak into LIKE patterns
func SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.ReplaceAll(query, "%", "")
	query = strings.ReplaceAll(query, "_", "")
	if len(query) > 100 {
		query = query[:100]
	}
	return query
}
