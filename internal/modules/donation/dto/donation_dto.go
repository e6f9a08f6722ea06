package dto

import (
	"elimufund.com/backend/internal/modules/donation/repository"
	commonDto "elimufund.com/backend/pkg/dto"
)

type CreateDonationInput struct {
	StudentID     uint    `json:"student_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Anonymous     bool    `json:"anonymous"`
	Message       string  `json:"message" binding:"max=250"`
	PaymentMethod string  `json:"paymentMethod" binding:"max=50"`
}

type DonationResponse struct {
	Message  string                            `json:"message"`
	Donation *commonDto.DonationDetailResponse `json:"donation"`
}

type MyDonationsResponse struct {
	Donations         []commonDto.DonationDetailResponse `json:"donations"`
	TotalDonated      float64                            `json:"total_donated"`
	StudentsSupported int                                `json:"students_supported"`
}

type SupportedStudentResponse struct {
	commonDto.StudentProfileResponse
	MyTotalDonation float64 `json:"my_total_donation"`
	MyDonationCount int64   `json:"my_donation_count"`
}

type MyStudentsResponse struct {
	Students []SupportedStudentResponse `json:"students"`
	Count    int                        `json:"count"`
}

type ReconcileReport struct {
	Checked int                      `json:"profiles_checked"`
	Drifted []repository.LedgerDrift `json:"drifted"`
	Fixed   bool                     `json:"fixed"`
}
