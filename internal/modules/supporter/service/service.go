package service

import (
	"context"
	"errors"
	"fmt"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/supporter/dto"
	"elimufund.com/backend/internal/modules/supporter/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/pkg/apperror"
	"elimufund.com/backend/pkg/database"
	commonDto "elimufund.com/backend/pkg/dto"
	"gorm.io/gorm"
)

type ProfileFinder interface {
	FindByID(ctx context.Context, id uint) (*entity.StudentProfile, error)
}

type SupporterService interface {
	Follow(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowResponse, error)
	Unfollow(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowResponse, error)
	Followed(ctx context.Context, user *entity.User) (*commonDto.StudentListResponse, error)
	Supporters(ctx context.Context, profileID uint) (*dto.SupportersResponse, error)
	Status(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowingStatusResponse, error)
}

type supporterService struct {
	repo      repository.SupporterRepository
	profiles  ProfileFinder
	projector *projection.Projector
}

func NewSupporterService(repo repository.SupporterRepository, profiles ProfileFinder, projector *projection.Projector) SupporterService {
	return &supporterService{
		repo:      repo,
		profiles:  profiles,
		projector: projector,
	}
}

func (s *supporterService) Follow(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowResponse, error) {
	if err := requireDonor(user); err != nil {
		return nil, err
	}

	profile, err := s.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, user.ID, profile.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("Already following this student")
	}

	// A concurrent follow can still win between the check and the insert.
	if err := s.repo.Create(ctx, &entity.Supporter{UserID: user.ID, StudentProfileID: profile.ID}); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("Already following this student")
		}
		return nil, err
	}

	return &dto.FollowResponse{
		Message:     fmt.Sprintf("Successfully following %s", profile.FullName),
		IsFollowing: true,
	}, nil
}

func (s *supporterService) Unfollow(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowResponse, error) {
	if err := requireDonor(user); err != nil {
		return nil, err
	}

	profile, err := s.profile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.Delete(ctx, user.ID, profile.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperror.Validation("Not following this student")
	}

	return &dto.FollowResponse{
		Message:     fmt.Sprintf("Successfully unfollowed %s", profile.FullName),
		IsFollowing: false,
	}, nil
}

func (s *supporterService) Followed(ctx context.Context, user *entity.User) (*commonDto.StudentListResponse, error) {
	if err := requireDonor(user); err != nil {
		return nil, err
	}

	profiles, err := s.repo.ListFollowed(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	students, err := s.projector.Profiles(ctx, profiles, user)
	if err != nil {
		return nil, err
	}
	return commonDto.NewStudentListResponse(students), nil
}

func (s *supporterService) Supporters(ctx context.Context, profileID uint) (*dto.SupportersResponse, error) {
	if _, err := s.profile(ctx, profileID); err != nil {
		return nil, err
	}

	users, err := s.repo.ListSupporters(ctx, profileID)
	if err != nil {
		return nil, err
	}

	supporters := commonDto.NewUserResponses(users)
	return &dto.SupportersResponse{Supporters: supporters, Count: len(supporters)}, nil
}

func (s *supporterService) Status(ctx context.Context, user *entity.User, profileID uint) (*dto.FollowingStatusResponse, error) {
	if _, err := s.profile(ctx, profileID); err != nil {
		return nil, err
	}

	following, err := s.repo.Exists(ctx, user.ID, profileID)
	if err != nil {
		return nil, err
	}
	return &dto.FollowingStatusResponse{IsFollowing: following, StudentID: profileID}, nil
}

func (s *supporterService) profile(ctx context.Context, id uint) (*entity.StudentProfile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}
	return profile, nil
}

// requireDonor keeps the relation donor-only even for callers that bypass the route guards.
func requireDonor(user *entity.User) error {
	if user == nil {
		return apperror.Unauthenticated("Authentication required")
	}
	switch user.Role {
	case entity.RoleDonor:
		return nil
	case entity.RoleAdmin, entity.RoleStudent:
		return apperror.Forbidden("Only donors can follow students")
	default:
		return apperror.Forbidden("Only donors can follow students")
	}
}
