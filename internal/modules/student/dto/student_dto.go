package dto

import (
	"strings"

	commonDto "elimufund.com/backend/pkg/dto"
)

type CreateProfileInput struct {
	FullName      string  `json:"full_name" binding:"required,max=100"`
	AcademicLevel string  `json:"academic_level" binding:"required,max=50"`
	SchoolName    string  `json:"school_name" binding:"required,max=100"`
	FeeAmount     float64 `json:"fee_amount" binding:"required,gt=0"`
	Story         string  `json:"story" binding:"required,min=50"`
	ProfileImage  string  `json:"profile_image" binding:"omitempty,max=200"`
}

// UpdateProfileInput changes only the fields present in the request body.
type UpdateProfileInput struct {
	FullName      *string  `json:"full_name" binding:"omitempty,min=1,max=100"`
	AcademicLevel *string  `json:"academic_level" binding:"omitempty,min=1,max=50"`
	SchoolName    *string  `json:"school_name" binding:"omitempty,min=1,max=100"`
	FeeAmount     *float64 `json:"fee_amount" binding:"omitempty,gt=0"`
	Story         *string  `json:"story" binding:"omitempty,min=50"`
	ProfileImage  *string  `json:"profile_image" binding:"omitempty,max=200"`
}

type ListFilter struct {
	Verified string `form:"verified"`
}

// VerifiedOnly is true unless the caller explicitly asked for something other than "true".
func (f ListFilter) VerifiedOnly() bool {
	v := strings.TrimSpace(f.Verified)
	return v == "" || strings.EqualFold(v, "true")
}

type StudentDetailResponse struct {
	commonDto.StudentProfileResponse
	RecentDonations []commonDto.RecentDonationResponse `json:"recent_donations"`
	// TotalDonors counts distinct donors, not donations: three gifts from one
	// donor count once.
	TotalDonors     int64                              `json:"total_donors"`
}

type ProfileResponse struct {
	Message string                            `json:"message"`
	Profile *commonDto.StudentProfileResponse `json:"profile"`
}
