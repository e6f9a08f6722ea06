package handler

import (
	"net/http"

	"elimufund.com/backend/internal/modules/donation/dto"
	donationService "elimufund.com/backend/internal/modules/donation/service"
	commonDto "elimufund.com/backend/pkg/dto"
	"elimufund.com/backend/pkg/response"
	"elimufund.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	donationService donationService.DonationService
}

func NewDonationHandler(donationService donationService.DonationService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
	}
}

func (h *DonationHandler) Create(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateDonationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	donation, err := h.donationService.Create(c.Request.Context(), user, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.DonationResponse{
		Message:  "Donation successful",
		Donation: donation,
	})
}

func (h *DonationHandler) MyDonations(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.donationService.MyDonations(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *DonationHandler) Cancel(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id", "Donation not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.donationService.Cancel(c.Request.Context(), user, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "Donation cancelled successfully"})
}

func (h *DonationHandler) MyStudents(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.donationService.MyStudents(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
