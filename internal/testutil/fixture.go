package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/pkg/credential"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "password123"

var Hasher = credential.NewBcryptHasher(bcrypt.MinCost)

func Story() string {
	return strings.Repeat("I need support to finish my secondary education. ", 2)
}

func CreateUser(t testing.TB, db *gorm.DB, role entity.Role, username string) *entity.User {
	t.Helper()

	u := &entity.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Role:     role,
	}
	if err := u.SetPassword(Hasher, Password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateProfile creates a student user with a profile of the given fee.
func CreateProfile(t testing.TB, db *gorm.DB, username string, fee float64, verified bool) (*entity.User, *entity.StudentProfile) {
	t.Helper()

	u := CreateUser(t, db, entity.RoleStudent, username)
	p := &entity.StudentProfile{
		UserID:        u.ID,
		FullName:      "Student " + username,
		AcademicLevel: "Form 3",
		SchoolName:    "Alliance High",
		FeeAmount:     fee,
		Story:         Story(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if verified {
		if err := db.Model(p).UpdateColumn("is_verified", true).Error; err != nil {
			t.Fatalf("verify profile: %v", err)
		}
		p.IsVerified = true
	}
	return u, p
}

// CreateDonation inserts a donation and applies it to amount_raised, backdated to createdAt when non-zero.
func CreateDonation(t testing.TB, db *gorm.DB, donorID, profileID uint, amount float64, createdAt time.Time) *entity.Donation {
	t.Helper()

	d := &entity.Donation{
		DonorID:          donorID,
		StudentProfileID: profileID,
		Amount:           amount,
		CreatedAt:        createdAt,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return tx.Model(&entity.StudentProfile{}).
			Where("id = ?", profileID).
			UpdateColumn("amount_raised", gorm.Expr("amount_raised + ?", amount)).Error
	})
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return d
}

func Reload(t testing.TB, db *gorm.DB, p *entity.StudentProfile) *entity.StudentProfile {
	t.Helper()

	var fresh entity.StudentProfile
	if err := db.First(&fresh, p.ID).Error; err != nil {
		t.Fatalf("reload profile %d: %v", p.ID, err)
	}
	return &fresh
}
