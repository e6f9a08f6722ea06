package middleware

import (
	"context"
	"errors"
	"log/slog"

	"elimufund.com/backend/internal/authz"
	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/session"
	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

type AuthMiddleware struct {
	sessions *session.Manager
	users    UserFinder
}

func NewAuthMiddleware(sessions *session.Manager, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		users:    users,
	}
}

// Session resolves the caller when a live session exists. Anonymous requests
// pass through untouched; guards decide whether that is acceptable.
func (m *AuthMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.sessions.Current(c)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				slog.WarnContext(c.Request.Context(), "session lookup failed", slog.Any("error", err))
			}
			c.Next()
			return
		}

		user, err := m.users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				response.ResponseError(c, err)
				return
			}
			// The account was removed after the session was issued.
			c.Next()
			return
		}

		c.Set(response.ContextUserKey, user)
		c.Next()
	}
}

// Require aborts the request unless every guard passes.
func (m *AuthMiddleware) Require(guards ...authz.Guard) gin.HandlerFunc {
	guard := authz.All(guards...)
	return func(c *gin.Context) {
		if err := guard(response.OptionalUser(c)); err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.Require(authz.Authenticated())
}

func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return m.Require(authz.HasRole(roles...))
}
