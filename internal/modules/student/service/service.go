package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/student/dto"
	"elimufund.com/backend/internal/modules/student/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/database"
	commonDto "elimufund.com/backend/pkg/dto"
	"elimufund.com/backend/pkg/sanitize"
	"elimufund.com/backend/pkg/storage"
	"gorm.io/gorm"
)

const (
	recentDonationsLimit = 5
	maxImageSize         = 5 << 20
	imageFolder          = "profiles"
)

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// DonationStats supplies the donation summary shown on a profile page.
type DonationStats interface {
	RecentByProfile(ctx context.Context, profileID uint, limit int) ([]entity.Donation, error)
	CountDonors(ctx context.Context, profileID uint) (int64, error)
}

type StudentService interface {
	Create(ctx context.Context, user *entity.User, input dto.CreateProfileInput) (*commonDto.StudentProfileResponse, error)
	Update(ctx context.Context, user *entity.User, id uint, input dto.UpdateProfileInput) (*commonDto.StudentProfileResponse, error)
	UploadImage(ctx context.Context, user *entity.User, id uint, file commonDto.FileUpload) (*commonDto.StudentProfileResponse, error)
	Get(ctx context.Context, viewer *entity.User, id uint) (*dto.StudentDetailResponse, error)
	List(ctx context.Context, viewer *entity.User, filter dto.ListFilter) (*commonDto.StudentListResponse, error)
	MyProfile(ctx context.Context, user *entity.User) (*commonDto.StudentProfileResponse, error)
	// ProfileOf returns the projected profile of a student user, or nil when there is none.
	ProfileOf(ctx context.Context, user *entity.User) (*commonDto.StudentProfileResponse, error)
}

type studentService struct {
	repo         repository.StudentRepository
	donations    DonationStats
	projector    *projection.Projector
	imageStorage storage.ImageStorage
}

// NewStudentService builds the service. imageStorage may be nil, which disables uploads.
func NewStudentService(repo repository.StudentRepository, donations DonationStats, projector *projection.Projector, imageStorage storage.ImageStorage) StudentService {
	return &studentService{
		repo:         repo,
		donations:    donations,
		projector:    projector,
		imageStorage: imageStorage,
	}
}

func (s *studentService) Create(ctx context.Context, user *entity.User, input dto.CreateProfileInput) (*commonDto.StudentProfileResponse, error) {
	if user.Role != entity.RoleStudent {
		return nil, apperror.Forbidden("Only students can create profiles")
	}

	if _, err := s.repo.FindByUserID(ctx, user.ID); err == nil {
		return nil, apperror.Conflict("Profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &entity.StudentProfile{
		UserID:        user.ID,
		FullName:      strings.TrimSpace(input.FullName),
		AcademicLevel: strings.TrimSpace(input.AcademicLevel),
		SchoolName:    strings.TrimSpace(input.SchoolName),
		FeeAmount:     input.FeeAmount,
		Story:         sanitize.Text(input.Story),
		ProfileImage:  strings.TrimSpace(input.ProfileImage),
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("Profile already exists")
		}
		return nil, err
	}

	return s.projector.Profile(ctx, profile, user)
}

func (s *studentService) Update(ctx context.Context, user *entity.User, id uint, input dto.UpdateProfileInput) (*commonDto.StudentProfileResponse, error) {
	profile, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		profile.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.AcademicLevel != nil {
		profile.AcademicLevel = strings.TrimSpace(*input.AcademicLevel)
	}
	if input.SchoolName != nil {
		profile.SchoolName = strings.TrimSpace(*input.SchoolName)
	}
	if input.FeeAmount != nil {
		profile.FeeAmount = *input.FeeAmount
	}
	if input.Story != nil {
		profile.Story = sanitize.Text(*input.Story)
	}
	if input.ProfileImage != nil {
		profile.ProfileImage = strings.TrimSpace(*input.ProfileImage)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return s.projector.Profile(ctx, profile, user)
}

func (s *studentService) UploadImage(ctx context.Context, user *entity.User, id uint, file commonDto.FileUpload) (*commonDto.StudentProfileResponse, error) {
	if s.imageStorage == nil {
		return nil, apperror.Validation("Image uploads are not configured")
	}
	if file.Size > maxImageSize {
		return nil, apperror.Validation("Image must be at most 5MB")
	}
	if !allowedImageExt[strings.ToLower(filepath.Ext(file.FileName))] {
		return nil, apperror.Validation("Image must be a jpg, png or webp file")
	}

	profile, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, file.Reader, imageFolder, file.FileName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateImage(ctx, profile.ID, url); err != nil {
		return nil, err
	}

	previous := profile.ProfileImage
	profile.ProfileImage = url
	if previous != "" && s.imageStorage.Owns(previous) {
		if err := s.imageStorage.DeleteImage(ctx, previous); err != nil {
			slog.WarnContext(ctx, "failed to delete previous profile image",
				slog.Uint64("profile_id", uint64(profile.ID)),
				slog.Any("error", err),
			)
		}
	}

	return s.projector.Profile(ctx, profile, user)
}

func (s *studentService) Get(ctx context.Context, viewer *entity.User, id uint) (*dto.StudentDetailResponse, error) {
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	base, err := s.projector.Profile(ctx, profile, viewer)
	if err != nil {
		return nil, err
	}

	recent, err := s.donations.RecentByProfile(ctx, profile.ID, recentDonationsLimit)
	if err != nil {
		return nil, err
	}
	donors, err := s.donations.CountDonors(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	res := &dto.StudentDetailResponse{
		StudentProfileResponse: *base,
		RecentDonations:        make([]commonDto.RecentDonationResponse, 0, len(recent)),
		TotalDonors:            donors,
	}
	for i := range recent {
		res.RecentDonations = append(res.RecentDonations, commonDto.NewRecentDonationResponse(&recent[i]))
	}
	return res, nil
}

func (s *studentService) List(ctx context.Context, viewer *entity.User, filter dto.ListFilter) (*commonDto.StudentListResponse, error) {
	query := repository.ListFilter{Random: true}
	if filter.VerifiedOnly() {
		verified := true
		query.Verified = &verified
	}

	profiles, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	students, err := s.projector.Profiles(ctx, profiles, viewer)
	if err != nil {
		return nil, err
	}
	return commonDto.NewStudentListResponse(students), nil
}

func (s *studentService) MyProfile(ctx context.Context, user *entity.User) (*commonDto.StudentProfileResponse, error) {
	if user.Role != entity.RoleStudent {
		return nil, apperror.Forbidden("Not a student")
	}

	res, err := s.ProfileOf(ctx, user)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperror.NotFound("No profile found")
	}
	return res, nil
}

func (s *studentService) ProfileOf(ctx context.Context, user *entity.User) (*commonDto.StudentProfileResponse, error) {
	if user.Role != entity.RoleStudent {
		return nil, nil
	}

	profile, err := s.repo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.projector.Profile(ctx, profile, user)
}

func (s *studentService) find(ctx context.Context, id uint) (*entity.StudentProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}
	return profile, nil
}

func (s *studentService) editable(ctx context.Context, user *entity.User, id uint) (*entity.StudentProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student profile not found")
		}
		return nil, err
	}
	if !profile.CanBeEditedBy(user) {
		return nil, apperror.Forbidden("You are not allowed to edit this profile")
	}
	return profile, nil
}
