package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the admin middleware stores the token subject.
const ContextUserKey = "user"

// AdminFromContext returns the subject of the admin token on the request.
func AdminFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return "", ErrAdminNotFound
	}
	subject, ok := v.(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("%w: got %T", ErrAdminNotFound, v)
	}
	return subject, nil
}
