package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Error represents an API error with its HTTP status
type Error struct {
	Status  int
	Message string
}

// NewError creates a new API error
func NewError(status int, message string) *Error {
	return &Error{
		Status:  status,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// abortWithError writes a JSON error body and stops the handler chain
func abortWithError(c *gin.Context, status int, message string) {
	err := NewError(status, message)
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Status, gin.H{"error": err.Message})
}
