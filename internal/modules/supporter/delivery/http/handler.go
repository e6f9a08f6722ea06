package handler

import (
	"net/http"

	supporterService "elimufund.com/backend/internal/modules/supporter/service"
	"elimufund.com/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SupporterHandler struct {
	supporterService supporterService.SupporterService
}

func NewSupporterHandler(supporterService supporterService.SupporterService) *SupporterHandler {
	return &SupporterHandler{
		supporterService: supporterService,
	}
}

func (h *SupporterHandler) Follow(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.supporterService.Follow(c.Request.Context(), user, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SupporterHandler) Unfollow(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.supporterService.Unfollow(c.Request.Context(), user, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SupporterHandler) Followed(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.supporterService.Followed(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SupporterHandler) Supporters(c *gin.Context) {
	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.supporterService.Supporters(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SupporterHandler) Status(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.supporterService.Status(c.Request.Context(), user, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
