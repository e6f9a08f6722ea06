package dto

import commonDto "elimufund.com/backend/pkg/dto"

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type VerifyInput struct {
	Action string `json:"action" binding:"omitempty,oneof=approve reject"`
}

// Approve reports whether the input asks for approval. A missing action means approve.
func (in VerifyInput) Approve() bool {
	return in.Action == "" || in.Action == ActionApprove
}

type VerifyResponse struct {
	Message string                            `json:"message"`
	Student *commonDto.StudentProfileResponse `json:"student"`
}

type DashboardStatsResponse struct {
	TotalStudents     int64   `json:"total_students"`
	VerifiedStudents  int64   `json:"verified_students"`
	PendingStudents   int64   `json:"pending_students"`
	TotalDonors       int64   `json:"total_donors"`
	TotalDonations    int64   `json:"total_donations"`
	TotalAmountRaised float64 `json:"total_amount_raised"`
}

type DonationsResponse struct {
	Donations   []commonDto.DonationDetailResponse `json:"donations"`
	Count       int                                `json:"count"`
	TotalAmount float64                            `json:"total_amount"`
}

type UsersResponse struct {
	Users []commonDto.UserResponse `json:"users"`
	Count int                      `json:"count"`
}
