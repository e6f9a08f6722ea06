package entity

import (
	"math"
	"time"
	"unicode/utf8"

	"elimufund.com/backend/pkg/apperror"
	"gorm.io/gorm"
)

const (
	DefaultProfileImage = "/api/placeholder/300/300"
	MinStoryLength      = 50

	// moneyTolerance is half a cent; smaller differences are float noise.
	moneyTolerance = 0.005
)

// RoundMoney rounds an amount to whole cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

type StudentProfile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User          *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FullName      string    `gorm:"size:100;not null" json:"full_name"`
	AcademicLevel string    `gorm:"size:50;not null" json:"academic_level"`
	SchoolName    string    `gorm:"size:100;not null" json:"school_name"`
	FeeAmount     float64   `gorm:"not null" json:"fee_amount"`
	AmountRaised  float64   `gorm:"not null;default:0" json:"amount_raised"`
	Story         string    `gorm:"type:text;not null" json:"story"`
	ProfileImage  string    `gorm:"size:200;default:'/api/placeholder/300/300'" json:"profile_image"`
	IsVerified    bool      `gorm:"not null;default:false;index" json:"is_verified"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *StudentProfile) Validate() error {
	if p.FeeAmount <= 0 {
		return apperror.Validation("Fee amount must be positive")
	}
	if utf8.RuneCountInString(p.Story) < MinStoryLength {
		return apperror.Validation("Story must be at least 50 characters")
	}
	if p.AmountRaised < -moneyTolerance {
		return apperror.Validation("Amount raised cannot be negative")
	}
	return nil
}

func (p *StudentProfile) BeforeSave(tx *gorm.DB) error {
	if p.ProfileImage == "" {
		p.ProfileImage = DefaultProfileImage
	}
	return p.Validate()
}

// PercentageRaised is amount_raised as a percentage of fee_amount, 0 for a non-positive fee.
func (p *StudentProfile) PercentageRaised() float64 {
	if p.FeeAmount <= 0 {
		return 0
	}
	return p.AmountRaised / p.FeeAmount * 100
}

func (p *StudentProfile) RemainingAmount() float64 {
	return p.FeeAmount - p.AmountRaised
}

// CanBeEditedBy reports whether user may change this profile: its owner or any admin.
func (p *StudentProfile) CanBeEditedBy(user *User) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case RoleAdmin:
		return true
	case RoleStudent:
		return p.UserID == user.ID
	case RoleDonor:
		return false
	default:
		return false
	}
}
