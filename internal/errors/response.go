package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`   // code from codes.go
	Message string `json:"message"` // shown to the shopper or admin as is
}

// defaultMessages is the wording used when a handler passes no message.
var defaultMessages = map[string]string{
	AuthUnauthorized:       "Please log in to continue",
	AuthInvalidCredentials: "Invalid email or password",
	AuthTokenExpired:       "Your login has expired",
	AuthTokenInvalid:       "Invalid authentication token",
	AuthTokenRevoked:       "You have been logged out",
	AuthSessionExpired:     "Your session has expired, please log in again",
	AuthEmailAlreadyExists: "An account with this email already exists",

	AuthzForbidden: "You do not have access to this resource",
	AuthzAdminOnly: "Admin access required",

	ValidationInvalidInput: "Please correct the highlighted fields",
	ValidationInvalidID:    "Invalid ID",

	ResourceNotFound: "The requested item was not found",

	ProductNotFound:   "Product not found",
	CheckoutEmptyCart: "Your cart is empty",

	LocationExists:     "This location already exists",
	OrderNotFound:      "Order not found. Please check the order ID and try again",
	OrderInvalidStatus: "Status must be one of In Transit, Out for Delivery, Delivered or Delayed",

	UploadInvalidFileType: "Only image files are allowed (JPEG, PNG, GIF, WEBP)",
	UploadFailed:          "Failed to generate upload URL",

	InternalServerError: "Something went wrong. Please try again later",
}

// DefaultMessage returns the stock wording for code, or the internal error
// wording for codes without one.
func DefaultMessage(code string) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[InternalServerError]
}

// RespondWithError writes an ErrorResponse. An empty message falls back to
// DefaultMessage(errorCode).
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	if message == "" {
		message = DefaultMessage(errorCode)
	}
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field messages for form validation.
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: DefaultMessage(ValidationInvalidInput),
		Fields:  fields,
	})
}
