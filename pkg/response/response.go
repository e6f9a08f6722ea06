package response

import (
	"log/slog"
	"net/http"
	"strconv"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey = "user"
)

// CurrentUser retrieves the authenticated user placed on the context by the session middleware.
func CurrentUser(c *gin.Context) (*entity.User, error) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	user, ok := value.(*entity.User)
	if !ok || user == nil {
		return nil, apperror.Unauthenticated("Invalid session")
	}

	return user, nil
}

// OptionalUser returns the authenticated user or nil for anonymous requests.
func OptionalUser(c *gin.Context) *entity.User {
	user, err := CurrentUser(c)
	if err != nil {
		return nil
	}
	return user
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "internal error",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.AbortWithStatusJSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// BadRequest writes a 400 with the given message, used for malformed input that never reached a service.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// ParamID parses a positive numeric path parameter. Anything else is reported
// as a missing resource, the same as an id that does not exist.
func ParamID(c *gin.Context, name, notFound string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(notFound)
	}
	return uint(id), nil
}
