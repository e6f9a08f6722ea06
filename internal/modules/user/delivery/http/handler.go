package handler

import (
	"log/slog"
	"net/http"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/user/dto"
	userService "elimufund.com/backend/internal/modules/user/service"
	"elimufund.com/backend/internal/session"
	commonDto "elimufund.com/backend/pkg/dto"
	"elimufund.com/backend/pkg/response"
	"elimufund.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService userService.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(authService userService.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.respondWithSession(c, user, http.StatusCreated, "User created successfully")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	user, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	h.respondWithSession(c, user, http.StatusOK, "Login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.End(c); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) CheckSession(c *gin.Context) {
	user := response.OptionalUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, dto.SessionResponse{Authenticated: false})
		return
	}

	res, err := h.authService.Describe(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{Authenticated: true, User: res})
}

func (h *AuthHandler) respondWithSession(c *gin.Context, user *entity.User, status int, message string) {
	if err := h.sessions.Start(c, user.ID); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.authService.Describe(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "session started",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("role", string(user.Role)),
	)
	c.JSON(status, dto.AuthResponse{Message: message, User: res})
}
