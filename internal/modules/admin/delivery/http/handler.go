package handler

import (
	"errors"
	"io"
	"net/http"

	"elimufund.com/backend/internal/modules/admin/dto"
	adminService "elimufund.com/backend/internal/modules/admin/service"
	"elimufund.com/backend/pkg/response"
	"elimufund.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) PendingStudents(c *gin.Context) {
	admin, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.adminService.PendingStudents(c.Request.Context(), admin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) VerifyStudent(c *gin.Context) {
	admin, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	// An empty body approves.
	var input dto.VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.adminService.Verify(c.Request.Context(), admin, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DashboardStats(c *gin.Context) {
	res, err := h.adminService.DashboardStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) Donations(c *gin.Context) {
	res, err := h.adminService.Donations(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) Users(c *gin.Context) {
	res, err := h.adminService.Users(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// LedgerReport only reads. LedgerRepair rewrites drifted counters.
func (h *AdminHandler) LedgerReport(c *gin.Context) {
	h.reconcile(c, false)
}

func (h *AdminHandler) LedgerRepair(c *gin.Context) {
	h.reconcile(c, true)
}

func (h *AdminHandler) reconcile(c *gin.Context, fix bool) {
	res, err := h.adminService.Reconcile(c.Request.Context(), fix)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
