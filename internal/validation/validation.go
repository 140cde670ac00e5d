// Package validation provides input validation middleware and helpers for
// the console API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxUploadSize is the maximum CSV upload size (10MB)
const MaxUploadSize = 10 << 20

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// MaxChatLength caps a single chat question.
const MaxChatLength = 2000

var (
	// emailRegex is deliberately loose; the backend is the authority
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// transactionIDRegex matches backend transaction identifiers
	transactionIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidEmail checks basic email shape.
func IsValidEmail(s string) bool {
	return len(s) <= 254 && emailRegex.MatchString(s)
}

// IsValidTransactionID checks a transaction identifier before it is used in
// an upstream URL path.
func IsValidTransactionID(s string) bool {
	return transactionIDRegex.MatchString(s)
}

// IsValidScore checks a risk score is in [0, 1].
func IsValidScore(v float64) bool {
	return v >= 0 && v <= 1
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidEmail checks if a field looks like an email address
func ValidEmail(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidEmail(value) {
			return &ValidationError{Field: field, Message: "must be a valid email address"}
		}
		return nil
	}
}

// ValidTransactionID checks if a field is a well-formed transaction ID
func ValidTransactionID(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidTransactionID(value) {
			return &ValidationError{Field: field, Message: "must be 1-64 characters of letters, digits, dash, or underscore"}
		}
		return nil
	}
}

// InRange checks a float field against [min, max]
func InRange(field string, value, min, max float64) func() *ValidationError {
	return func() *ValidationError {
		if value < min || value > max {
			return &ValidationError{Field: field, Message: "is out of range"}
		}
		return nil
	}
}

// RespondIfInvalid writes a 400 with validation details and reports whether
// it did so.
func RespondIfInvalid(c *gin.Context, errs ValidationErrors) bool {
	if len(errs) == 0 {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation_failed",
		"details": errs,
	})
	return true
}
