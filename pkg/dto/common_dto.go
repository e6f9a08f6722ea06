package dto

import (
	"io"
	"time"

	"elimufund.com/backend/internal/entity"
)

// UserResponse is the public view of a user. The password hash has no field here.
type UserResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func NewUserResponses(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type StudentProfileResponse struct {
	ID               uint      `json:"id"`
	UserID           uint      `json:"user_id"`
	FullName         string    `json:"full_name"`
	AcademicLevel    string    `json:"academic_level"`
	SchoolName       string    `json:"school_name"`
	FeeAmount        float64   `json:"fee_amount"`
	AmountRaised     float64   `json:"amount_raised"`
	Story            string    `json:"story"`
	ProfileImage     string    `json:"profile_image"`
	IsVerified       bool      `json:"is_verified"`
	CreatedAt        time.Time `json:"created_at"`
	PercentageRaised float64   `json:"percentage_raised"`
	RemainingAmount  float64   `json:"remaining_amount"`
	FollowersCount   int64     `json:"followers_count"`
	IsFollowing      bool      `json:"is_following"`
}

// NewStudentProfileResponse fills the stored and derived fields. Follower data is left zero.
func NewStudentProfileResponse(p *entity.StudentProfile) StudentProfileResponse {
	return StudentProfileResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		FullName:         p.FullName,
		AcademicLevel:    p.AcademicLevel,
		SchoolName:       p.SchoolName,
		FeeAmount:        p.FeeAmount,
		AmountRaised:     p.AmountRaised,
		Story:            p.Story,
		ProfileImage:     p.ProfileImage,
		IsVerified:       p.IsVerified,
		CreatedAt:        p.CreatedAt,
		PercentageRaised: p.PercentageRaised(),
		RemainingAmount:  p.RemainingAmount(),
	}
}

type DonorSummary struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

type StudentSummary struct {
	ID         uint   `json:"id"`
	FullName   string `json:"full_name"`
	SchoolName string `json:"school_name"`
}

type DonationDetailResponse struct {
	ID            uint           `json:"id"`
	Amount        float64        `json:"amount"`
	IsAnonymous   bool           `json:"is_anonymous"`
	Message       string         `json:"message"`
	PaymentMethod string         `json:"payment_method"`
	CreatedAt     time.Time      `json:"created_at"`
	Donor         DonorSummary   `json:"donor"`
	Student       StudentSummary `json:"student"`
}

// NewDonationDetailResponse expects Donor and StudentProfile to be preloaded.
// Anonymous donations hide both the donor's name and email.
func NewDonationDetailResponse(d *entity.Donation) DonationDetailResponse {
	res := DonationDetailResponse{
		ID:            d.ID,
		Amount:        d.Amount,
		IsAnonymous:   d.IsAnonymous,
		Message:       d.Message,
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     d.CreatedAt,
		Donor:         DonorSummary{Username: d.DonorDisplayName()},
	}

	if !d.IsAnonymous && d.Donor != nil {
		email := d.Donor.Email
		res.Donor.Email = &email
	}
	if d.StudentProfile != nil {
		res.Student = StudentSummary{
			ID:         d.StudentProfile.ID,
			FullName:   d.StudentProfile.FullName,
			SchoolName: d.StudentProfile.SchoolName,
		}
	} else {
		res.Student.ID = d.StudentProfileID
	}

	return res
}

func NewDonationDetailResponses(donations []entity.Donation) []DonationDetailResponse {
	out := make([]DonationDetailResponse, 0, len(donations))
	for i := range donations {
		out = append(out, NewDonationDetailResponse(&donations[i]))
	}
	return out
}

type RecentDonationResponse struct {
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
	IsAnonymous bool      `json:"is_anonymous"`
	Donor       string    `json:"donor"`
}

func NewRecentDonationResponse(d *entity.Donation) RecentDonationResponse {
	return RecentDonationResponse{
		Amount:      d.Amount,
		CreatedAt:   d.CreatedAt,
		IsAnonymous: d.IsAnonymous,
		Donor:       d.DonorDisplayName(),
	}
}

// FileUpload is an uploaded file handed from a handler to a service.
type FileUpload struct {
	Reader   io.Reader
	FileName string
	Size     int64
}

type StudentListResponse struct {
	Students []StudentProfileResponse `json:"students"`
	Count    int                      `json:"count"`
}

func NewStudentListResponse(students []StudentProfileResponse) *StudentListResponse {
	return &StudentListResponse{Students: students, Count: len(students)}
}

type MessageResponse struct {
	Message string `json:"message"`
}
