package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// callerKey is the key used to store the resolved caller in the Gin context.
const callerKey = string(contextKey("caller"))

// GetCallerFromContext retrieves the authenticated caller from the Gin
// context. It returns the caller and a boolean indicating if it was found.
func GetCallerFromContext(c *gin.Context) (domain.CallContext, bool) {
	val, exists := c.Get(callerKey)
	if !exists {
		return domain.CallContext{}, false
	}
	caller, ok := val.(domain.CallContext)
	if !ok {
		return domain.CallContext{}, false
	}
	return caller, true
}
