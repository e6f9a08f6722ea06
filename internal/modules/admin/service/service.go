package service

import (
	"context"
	"errors"
	"log/slog"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/admin/dto"
	donationDto "elimufund.com/backend/internal/modules/donation/dto"
	donationRepo "elimufund.com/backend/internal/modules/donation/repository"
	donationService "elimufund.com/backend/internal/modules/donation/service"
	studentRepo "elimufund.com/backend/internal/modules/student/repository"
	userRepo "elimufund.com/backend/internal/modules/user/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/pkg/apperror"
	commonDto "elimufund.com/backend/pkg/dto"
	"gorm.io/gorm"
)

type AdminService interface {
	PendingStudents(ctx context.Context, admin *entity.User) (*commonDto.StudentListResponse, error)
	Verify(ctx context.Context, admin *entity.User, id uint, input dto.VerifyInput) (*dto.VerifyResponse, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	Donations(ctx context.Context) (*dto.DonationsResponse, error)
	Users(ctx context.Context) (*dto.UsersResponse, error)
	Reconcile(ctx context.Context, fix bool) (*donationDto.ReconcileReport, error)
}

type adminService struct {
	students  studentRepo.StudentRepository
	users     userRepo.UserRepository
	donations donationRepo.DonationRepository
	ledger    donationService.DonationService
	projector *projection.Projector
}

func NewAdminService(
	students studentRepo.StudentRepository,
	users userRepo.UserRepository,
	donations donationRepo.DonationRepository,
	ledger donationService.DonationService,
	projector *projection.Projector,
) AdminService {
	return &adminService{
		students:  students,
		users:     users,
		donations: donations,
		ledger:    ledger,
		projector: projector,
	}
}

func (s *adminService) PendingStudents(ctx context.Context, admin *entity.User) (*commonDto.StudentListResponse, error) {
	unverified := false
	profiles, err := s.students.List(ctx, studentRepo.ListFilter{Verified: &unverified})
	if err != nil {
		return nil, err
	}

	students, err := s.projector.Profiles(ctx, profiles, admin)
	if err != nil {
		return nil, err
	}
	return commonDto.NewStudentListResponse(students), nil
}

// Verify flips is_verified only. The ledger and donation history are left as they are.
func (s *adminService) Verify(ctx context.Context, admin *entity.User, id uint, input dto.VerifyInput) (*dto.VerifyResponse, error) {
	approve := input.Approve()
	if err := s.students.SetVerified(ctx, id, approve); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}

	profile, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.projector.Profile(ctx, profile, admin)
	if err != nil {
		return nil, err
	}

	message := "Student rejected"
	if approve {
		message = "Student verified successfully"
	}
	slog.InfoContext(ctx, "student verification changed",
		slog.Uint64("student_profile_id", uint64(id)),
		slog.Bool("verified", approve),
		slog.Uint64("admin_id", uint64(admin.ID)),
	)

	return &dto.VerifyResponse{Message: message, Student: student}, nil
}

func (s *adminService) DashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	total, verified, err := s.students.CountByVerification(ctx)
	if err != nil {
		return nil, err
	}
	donors, err := s.users.CountByRole(ctx, entity.RoleDonor)
	if err != nil {
		return nil, err
	}
	count, sum, err := s.donations.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		TotalStudents:     total,
		VerifiedStudents:  verified,
		PendingStudents:   total - verified,
		TotalDonors:       donors,
		TotalDonations:    count,
		TotalAmountRaised: sum,
	}, nil
}

func (s *adminService) Donations(ctx context.Context) (*dto.DonationsResponse, error) {
	donations, err := s.ledger.AllDonations(ctx)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, d := range donations {
		total += d.Amount
	}
	return &dto.DonationsResponse{Donations: donations, Count: len(donations), TotalAmount: total}, nil
}

func (s *adminService) Users(ctx context.Context) (*dto.UsersResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := commonDto.NewUserResponses(users)
	return &dto.UsersResponse{Users: out, Count: len(out)}, nil
}

func (s *adminService) Reconcile(ctx context.Context, fix bool) (*donationDto.ReconcileReport, error) {
	return s.ledger.Reconcile(ctx, fix)
}
