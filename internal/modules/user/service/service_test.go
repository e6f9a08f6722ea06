package service

import (
	"context"
	"strings"
	"testing"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/user/dto"
	"elimufund.com/backend/internal/modules/user/repository"
	"elimufund.com/backend/internal/testutil"
	"elimufund.com/backend/pkg/apperror"
	commonDto "elimufund.com/backend/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfiles struct {
	profile *commonDto.StudentProfileResponse
}

func (s stubProfiles) ProfileOf(_ context.Context, _ *entity.User) (*commonDto.StudentProfileResponse, error) {
	return s.profile, nil
}

func newService(t *testing.T, profiles ProfileProvider) (AuthService, repository.UserRepository) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	return NewAuthService(repo, testutil.Hasher, profiles), repo
}

func signup(name, email, role string) dto.SignupInput {
	return dto.SignupInput{FullName: name, Email: email, UserType: role, Password: "password123"}
}

func TestSignupCreatesUserWithHashedPassword(t *testing.T) {
	svc, repo := newService(t, nil)
	ctx := context.Background()

	user, err := svc.Signup(ctx, signup("Jane Wanjiku", "Jane@Example.com", "donor"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Jane Wanjiku", user.Username)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, entity.RoleDonor, user.Role)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, stored.CheckPassword(testutil.Hasher, "password123"))
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, signup("Jane Wanjiku", "jane@example.com", "donor"))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signup("Someone Else", "JANE@example.com", "student"))
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestSignupSuffixesTakenUsername(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	first, err := svc.Signup(ctx, signup("Amani Otieno", "amani1@example.com", "student"))
	require.NoError(t, err)
	second, err := svc.Signup(ctx, signup("Amani Otieno", "amani2@example.com", "student"))
	require.NoError(t, err)

	assert.Equal(t, "Amani Otieno", first.Username)
	assert.NotEqual(t, first.Username, second.Username)
	assert.True(t, strings.HasPrefix(second.Username, "Amani Otieno_"))
}

func TestSignupShortNameIsPadded(t *testing.T) {
	svc, _ := newService(t, nil)

	user, err := svc.Signup(context.Background(), signup("Jo", "jo@example.com", "donor"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.Username, "Jo_"))
	assert.NoError(t, user.Validate())
}

func TestSignupRejectsAdminRole(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Signup(context.Background(), signup("Mallory", "mallory@example.com", "admin"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	created, err := svc.Signup(ctx, signup("Jane Wanjiku", "jane@example.com", "donor"))
	require.NoError(t, err)

	user, err := svc.Login(ctx, dto.LoginInput{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = svc.Login(ctx, dto.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestFindByIDMissing(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.FindByID(context.Background(), 77)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDescribeEmbedsStudentProfile(t *testing.T) {
	profile := &commonDto.StudentProfileResponse{ID: 5, FullName: "Amani Otieno"}
	svc, _ := newService(t, stubProfiles{profile: profile})
	ctx := context.Background()

	student := &entity.User{ID: 1, Username: "amani", Role: entity.RoleStudent}
	res, err := svc.Describe(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, profile, res.StudentProfile)

	donor := &entity.User{ID: 2, Username: "donor", Role: entity.RoleDonor}
	res, err = svc.Describe(ctx, donor)
	require.NoError(t, err)
	assert.Nil(t, res.StudentProfile)
}

func TestBaseUsernameTruncates(t *testing.T) {
	long := strings.Repeat("a", 120)
	assert.Len(t, baseUsername(long), maxUsernameLength)
	assert.Len(t, withSuffix(long), maxUsernameLength)
	assert.Equal(t, "Jane Doe", baseUsername("  Jane   Doe "))
}
