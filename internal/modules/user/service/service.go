package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/user/dto"
	"elimufund.com/backend/internal/modules/user/repository"
	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/credential"
	"elimufund.com/backend/pkg/database"
	commonDto "elimufund.com/backend/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 80
	signupAttempts    = 3
)

// ProfileProvider returns a student's own projected profile, nil when there is none.
type ProfileProvider interface {
	ProfileOf(ctx context.Context, user *entity.User) (*commonDto.StudentProfileResponse, error)
}

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*entity.User, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	Describe(ctx context.Context, user *entity.User) (*dto.AuthUserResponse, error)
}

type authService struct {
	repo     repository.UserRepository
	hasher   credential.Hasher
	profiles ProfileProvider
}

func NewAuthService(repo repository.UserRepository, hasher credential.Hasher, profiles ProfileProvider) AuthService {
	return &authService{
		repo:     repo,
		hasher:   hasher,
		profiles: profiles,
	}
}

func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error) {
	email := normalizeEmail(input.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	role, ok := entity.ParseRole(input.UserType)
	if !ok || role == entity.RoleAdmin {
		return nil, apperror.Validation("User type must be one of: donor, student")
	}

	user := &entity.User{Email: email, Role: role}
	if err := user.SetPassword(s.hasher, input.Password); err != nil {
		return nil, err
	}

	base := baseUsername(input.FullName)
	for attempt := 0; attempt < signupAttempts; attempt++ {
		username, err := s.availableUsername(ctx, base)
		if err != nil {
			return nil, err
		}
		user.Username = username

		err = s.repo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, err
		}

		// Lost a race: either the email or the username was just taken.
		if err := s.ensureEmailFree(ctx, email); err != nil {
			return nil, err
		}
		user.ID = 0
	}

	return nil, apperror.Conflict("Could not allocate a username, please try again")
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*entity.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthenticated("Invalid email or password")
		}
		return nil, err
	}

	if !user.CheckPassword(s.hasher, input.Password) {
		return nil, apperror.Unauthenticated("Invalid email or password")
	}

	return user, nil
}

func (s *authService) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Describe(ctx context.Context, user *entity.User) (*dto.AuthUserResponse, error) {
	res := &dto.AuthUserResponse{UserResponse: commonDto.NewUserResponse(user)}

	if user.Role == entity.RoleStudent && s.profiles != nil {
		profile, err := s.profiles.ProfileOf(ctx, user)
		if err != nil {
			return nil, err
		}
		res.StudentProfile = profile
	}

	return res, nil
}

func (s *authService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return apperror.Conflict("Email already registered")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// availableUsername returns base, or base with a short random suffix when base is taken.
func (s *authService) availableUsername(ctx context.Context, base string) (string, error) {
	_, err := s.repo.FindByUsername(ctx, base)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return base, nil
	}
	if err != nil {
		return "", err
	}
	return withSuffix(base), nil
}

func baseUsername(fullName string) string {
	username := strings.Join(strings.Fields(fullName), " ")
	if utf8.RuneCountInString(username) < minUsernameLength {
		username = withSuffix(username)
	}
	return truncate(username, maxUsernameLength)
}

func withSuffix(username string) string {
	suffix := "_" + uuid.New().String()[:4]
	return truncate(username, maxUsernameLength-len(suffix)) + suffix
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
