package entity

import (
	"strings"
	"time"

	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/credential"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDonor   Role = "donor"
	RoleStudent Role = "student"
)

// ParseRole accepts only the closed set of roles.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleDonor:
		return RoleDonor, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDonor, RoleStudent:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:128;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return apperror.Validation("Invalid email address")
	}
	if len([]rune(u.Username)) < 3 {
		return apperror.Validation("Username must be at least 3 characters")
	}
	if !u.Role.Valid() {
		return apperror.Validation("Role must be one of: admin, donor, student")
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

// SetPassword replaces the stored credential with a fresh hash of plain.
func (u *User) SetPassword(h credential.Hasher, plain string) error {
	hash, err := h.Hash(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(h credential.Hasher, plain string) bool {
	return h.Verify(u.PasswordHash, plain)
}
