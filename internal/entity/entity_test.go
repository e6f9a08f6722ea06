package entity

import (
	"strings"
	"testing"
	"time"

	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validStory() string {
	return strings.Repeat("I need help paying my school fees. ", 2)
}

func TestParseRole(t *testing.T) {
	for _, in := range []string{"admin", "Donor", " student "} {
		role, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.True(t, role.Valid(), in)
	}

	_, ok := ParseRole("superuser")
	assert.False(t, ok)
	assert.False(t, Role("Admin").Valid())
}

func TestUserValidate(t *testing.T) {
	u := &User{Username: "jane", Email: "jane@example.com", Role: RoleDonor}
	require.NoError(t, u.Validate())

	u.Email = "jane.example.com"
	assert.ErrorIs(t, u.Validate(), apperror.ErrValidation)

	u.Email = "jane@example.com"
	u.Username = "jo"
	assert.ErrorIs(t, u.Validate(), apperror.ErrValidation)

	u.Username = "jane"
	u.Role = "guest"
	assert.ErrorIs(t, u.Validate(), apperror.ErrValidation)
}

func TestUserPassword(t *testing.T) {
	h := credential.NewBcryptHasher(bcrypt.MinCost)
	u := &User{}

	require.NoError(t, u.SetPassword(h, "password123"))
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.True(t, u.CheckPassword(h, "password123"))
	assert.False(t, u.CheckPassword(h, "password124"))
}

func TestStudentProfileValidate(t *testing.T) {
	p := &StudentProfile{FeeAmount: 1000, Story: validStory()}
	require.NoError(t, p.Validate())

	p.FeeAmount = 0
	assert.ErrorIs(t, p.Validate(), apperror.ErrValidation)

	p.FeeAmount = 1000
	p.Story = "too short"
	assert.ErrorIs(t, p.Validate(), apperror.ErrValidation)
}

func TestStudentProfileValidateToleratesFloatNoise(t *testing.T) {
	p := &StudentProfile{FeeAmount: 1000, Story: validStory(), AmountRaised: -2.7755575615628914e-17}
	require.NoError(t, p.Validate())

	p.AmountRaised = -0.01
	assert.ErrorIs(t, p.Validate(), apperror.ErrValidation)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 0.8, RoundMoney(0.1+0.7))
	assert.Equal(t, 0.0, RoundMoney(0.8-0.7-0.1))
	assert.Equal(t, 12.35, RoundMoney(12.345678))
}

func TestStudentProfileDerivedValues(t *testing.T) {
	p := &StudentProfile{FeeAmount: 1000, AmountRaised: 400}
	assert.InDelta(t, 40, p.PercentageRaised(), 1e-9)
	assert.InDelta(t, 600, p.RemainingAmount(), 1e-9)

	p.AmountRaised = 1100
	assert.InDelta(t, 110, p.PercentageRaised(), 1e-9)
	assert.InDelta(t, -100, p.RemainingAmount(), 1e-9)

	p.FeeAmount = 0
	assert.Zero(t, p.PercentageRaised())
	p.FeeAmount = -5
	assert.Zero(t, p.PercentageRaised())
}

func TestStudentProfileCanBeEditedBy(t *testing.T) {
	p := &StudentProfile{UserID: 7}

	assert.True(t, p.CanBeEditedBy(&User{ID: 7, Role: RoleStudent}))
	assert.True(t, p.CanBeEditedBy(&User{ID: 1, Role: RoleAdmin}))
	assert.False(t, p.CanBeEditedBy(&User{ID: 8, Role: RoleStudent}))
	assert.False(t, p.CanBeEditedBy(&User{ID: 7, Role: RoleDonor}))
	assert.False(t, p.CanBeEditedBy(nil))
}

func TestDonationValidate(t *testing.T) {
	d := &Donation{Amount: 10}
	require.NoError(t, d.Validate())

	d.Amount = 0
	assert.ErrorIs(t, d.Validate(), apperror.ErrValidation)

	d.Amount = 10
	d.Message = strings.Repeat("x", MaxMessageLength+1)
	assert.ErrorIs(t, d.Validate(), apperror.ErrValidation)
}

func TestDonationCancellableAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := &Donation{CreatedAt: created}

	assert.True(t, d.CancellableAt(created.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, d.CancellableAt(created.Add(24*time.Hour), 24*time.Hour))
	assert.False(t, d.CancellableAt(created.Add(24*time.Hour+time.Second), 24*time.Hour))
}

func TestDonationDonorDisplayName(t *testing.T) {
	d := &Donation{Donor: &User{Username: "kind_donor"}}
	assert.Equal(t, "kind_donor", d.DonorDisplayName())

	d.IsAnonymous = true
	assert.Equal(t, AnonymousDonorName, d.DonorDisplayName())
}
