package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps an unexpected storage or infrastructure error to a code and
// a safe message. resource names the entity involved, e.g. "product".
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(resource)}
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint"):
		if strings.Contains(lower, "email") {
			return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "An account with this email already exists"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This " + resourceOrDefault(resource) + " already exists"}
	case strings.Contains(lower, "foreign key constraint"):
		return ErrorInfo{Code: ResourceConflict, Message: "This " + resourceOrDefault(resource) + " is still referenced by other data"}
	case strings.Contains(lower, "not-null constraint") || strings.Contains(lower, "not null constraint"):
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout"):
		return ErrorInfo{Code: InternalExternalAPI, Message: "A backing service is unavailable. Please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Failed to process " + resourceOrDefault(resource)}
}

func notFoundMessage(resource string) string {
	r := resourceOrDefault(resource)
	return strings.ToUpper(r[:1]) + r[1:] + " not found"
}

func resourceOrDefault(resource string) string {
	if resource == "" {
		return "request"
	}
	return resource
}
