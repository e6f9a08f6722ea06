package entity

import (
	"time"
	"unicode/utf8"

	"elimufund.com/backend/pkg/apperror"
	"gorm.io/gorm"
)

const (
	DefaultPaymentMethod = "mpesa"
	MaxMessageLength     = 250
	MaxPaymentMethodLen  = 50
	AnonymousDonorName   = "Anonymous"
)

type Donation struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	DonorID          uint            `gorm:"not null;index" json:"donor_id"`
	Donor            *User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	StudentProfileID uint            `gorm:"not null;index" json:"student_profile_id"`
	StudentProfile   *StudentProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount           float64         `gorm:"not null" json:"amount"`
	IsAnonymous      bool            `gorm:"not null;default:false" json:"is_anonymous"`
	Message          string          `gorm:"size:250" json:"message"`
	PaymentMethod    string          `gorm:"size:50;default:'mpesa'" json:"payment_method"`
	CreatedAt        time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (d *Donation) Validate() error {
	if d.Amount <= 0 {
		return apperror.Validation("Donation amount must be positive")
	}
	if utf8.RuneCountInString(d.Message) > MaxMessageLength {
		return apperror.Validation("Message must be at most 250 characters")
	}
	if utf8.RuneCountInString(d.PaymentMethod) > MaxPaymentMethodLen {
		return apperror.Validation("Payment method must be at most 50 characters")
	}
	return nil
}

func (d *Donation) BeforeSave(tx *gorm.DB) error {
	if d.PaymentMethod == "" {
		d.PaymentMethod = DefaultPaymentMethod
	}
	return d.Validate()
}

// CancellableAt reports whether the donation is still inside its cancel window at now.
func (d *Donation) CancellableAt(now time.Time, window time.Duration) bool {
	return now.Sub(d.CreatedAt) <= window
}

// DonorDisplayName hides the donor behind "Anonymous" when requested.
func (d *Donation) DonorDisplayName() string {
	if d.IsAnonymous || d.Donor == nil {
		return AnonymousDonorName
	}
	return d.Donor.Username
}
