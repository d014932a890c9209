package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code and message safe to show to clients
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates database errors into client-safe codes and messages.
// context names the operation, e.g. "create user" or "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// postgres 23505 and the sqlite equivalent
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower)
	}

	// postgres 23502
	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint failed") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if errors.Is(err, gorm.ErrCheckConstraintViolated) || strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "A backing service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	}
	if strings.Contains(errLower, "slug") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Slug is already in use"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "Resource is still in use"}
	}
	if strings.Contains(errLower, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "Product does not exist"}
	}
	if strings.Contains(errLower, "category_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "Category does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced resource does not exist"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "categor"):
		return "Category not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "Resource not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not create the resource. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Could not update the resource. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete the resource. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
