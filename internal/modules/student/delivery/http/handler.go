package handler

import (
	"net/http"

	"elimufund.com/backend/internal/modules/student/dto"
	studentService "elimufund.com/backend/internal/modules/student/service"
	commonDto "elimufund.com/backend/pkg/dto"
	"elimufund.com/backend/pkg/response"
	"elimufund.com/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentService studentService.StudentService
}

func NewStudentHandler(studentService studentService.StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
	}
}

func (h *StudentHandler) List(c *gin.Context) {
	var filter dto.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.studentService.List(c.Request.Context(), response.OptionalUser(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) Get(c *gin.Context) {
	id, err := response.ParamID(c, "id", "Student not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.studentService.Get(c.Request.Context(), response.OptionalUser(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *StudentHandler) Create(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	profile, err := h.studentService.Create(c.Request.Context(), user, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ProfileResponse{
		Message: "Student profile created successfully",
		Profile: profile,
	})
}

func (h *StudentHandler) Update(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id", "Student profile not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	profile, err := h.studentService.Update(c.Request.Context(), user, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile updated successfully",
		Profile: profile,
	})
}

func (h *StudentHandler) UploadImage(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamID(c, "id", "Student profile not found")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "Image is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read image")
		return
	}
	defer file.Close()

	profile, err := h.studentService.UploadImage(c.Request.Context(), user, id, commonDto.FileUpload{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		Message: "Profile image updated successfully",
		Profile: profile,
	})
}

func (h *StudentHandler) MyProfile(c *gin.Context) {
	user, err := response.CurrentUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.studentService.MyProfile(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
