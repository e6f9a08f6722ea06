package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/modules/donation/dto"
	"elimufund.com/backend/internal/modules/donation/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/pkg/apperror"
	commonDto "elimufund.com/backend/pkg/dto"
	"elimufund.com/backend/pkg/ratelimit"
	"elimufund.com/backend/pkg/sanitize"
	"gorm.io/gorm"
)

const rateLimitAction = "donation"

// Policy holds the ledger rules that vary by deployment.
type Policy struct {
	AllowOverfunding bool
	CancelWindow     time.Duration
	Now              func() time.Time
}

func DefaultPolicy() Policy {
	return Policy{
		AllowOverfunding: true,
		CancelWindow:     24 * time.Hour,
		Now:              time.Now,
	}
}

type DonationService interface {
	Create(ctx context.Context, user *entity.User, input dto.CreateDonationInput) (*commonDto.DonationDetailResponse, error)
	Cancel(ctx context.Context, user *entity.User, id uint) error
	MyDonations(ctx context.Context, user *entity.User) (*dto.MyDonationsResponse, error)
	MyStudents(ctx context.Context, user *entity.User) (*dto.MyStudentsResponse, error)
	AllDonations(ctx context.Context) ([]commonDto.DonationDetailResponse, error)
	Reconcile(ctx context.Context, fix bool) (*dto.ReconcileReport, error)
}

type donationService struct {
	repo      repository.DonationRepository
	projector *projection.Projector
	limiter   *ratelimit.Limiter
	policy    Policy
}

// NewDonationService builds the ledger service. limiter may be nil.
func NewDonationService(repo repository.DonationRepository, projector *projection.Projector, limiter *ratelimit.Limiter, policy Policy) DonationService {
	if policy.Now == nil {
		policy.Now = time.Now
	}
	if policy.CancelWindow <= 0 {
		policy.CancelWindow = 24 * time.Hour
	}

	return &donationService{
		repo:      repo,
		projector: projector,
		limiter:   limiter,
		policy:    policy,
	}
}

func (s *donationService) Create(ctx context.Context, user *entity.User, input dto.CreateDonationInput) (*commonDto.DonationDetailResponse, error) {
	if err := requireDonor(user, "Only donors can make donations"); err != nil {
		return nil, err
	}

	if err := s.throttle(ctx, user.ID); err != nil {
		return nil, err
	}

	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = entity.DefaultPaymentMethod
	}

	donation := &entity.Donation{
		DonorID:          user.ID,
		Donor:            user,
		StudentProfileID: input.StudentID,
		Amount:           entity.RoundMoney(input.Amount),
		IsAnonymous:      input.Anonymous,
		Message:          sanitize.Text(input.Message),
		PaymentMethod:    paymentMethod,
	}
	if err := donation.Validate(); err != nil {
		s.release(ctx, user.ID)
		return nil, err
	}

	err := s.repo.CreateWithLedger(ctx, donation, func(profile *entity.StudentProfile) error {
		if !profile.IsVerified {
			return apperror.Validation("Student not verified")
		}
		if !s.policy.AllowOverfunding && entity.RoundMoney(profile.AmountRaised+donation.Amount) > profile.FeeAmount {
			return apperror.Validation(fmt.Sprintf("Donation exceeds the remaining amount of %.2f", profile.RemainingAmount()))
		}
		return nil
	})
	if err != nil {
		s.release(ctx, user.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Student not found")
		}
		return nil, err
	}

	donation.Donor = user
	res := commonDto.NewDonationDetailResponse(donation)
	return &res, nil
}

// Cancel reverses a donation. Expiry is checked before ownership so a stale
// donation always reports the window, whoever asks.
func (s *donationService) Cancel(ctx context.Context, user *entity.User, id uint) error {
	if user == nil {
		return apperror.Unauthenticated("Authentication required")
	}

	_, err := s.repo.CancelWithLedger(ctx, id, func(donation *entity.Donation) error {
		if !donation.CancellableAt(s.policy.Now(), s.policy.CancelWindow) {
			return apperror.Validation(fmt.Sprintf("Cannot cancel after %s", humanizeWindow(s.policy.CancelWindow)))
		}
		if donation.DonorID != user.ID {
			return apperror.Forbidden("You can only cancel your own donations")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Donation not found")
		}
		return err
	}
	return nil
}

func (s *donationService) MyDonations(ctx context.Context, user *entity.User) (*dto.MyDonationsResponse, error) {
	if err := requireDonor(user, "Only donors can view donations"); err != nil {
		return nil, err
	}

	donations, err := s.repo.ListByDonor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	students := make(map[uint]struct{})
	for i := range donations {
		total += donations[i].Amount
		students[donations[i].StudentProfileID] = struct{}{}
	}

	return &dto.MyDonationsResponse{
		Donations:         commonDto.NewDonationDetailResponses(donations),
		TotalDonated:      total,
		StudentsSupported: len(students),
	}, nil
}

func (s *donationService) MyStudents(ctx context.Context, user *entity.User) (*dto.MyStudentsResponse, error) {
	if err := requireDonor(user, "Only donors can view this"); err != nil {
		return nil, err
	}

	totals, err := s.repo.TotalsByDonor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.StudentProfileID)
	}
	profiles, err := s.repo.FindProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	projected, err := s.projector.Profiles(ctx, profiles, user)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]commonDto.StudentProfileResponse, len(projected))
	for _, p := range projected {
		byID[p.ID] = p
	}

	students := make([]dto.SupportedStudentResponse, 0, len(totals))
	for _, t := range totals {
		profile, ok := byID[t.StudentProfileID]
		if !ok {
			continue
		}
		students = append(students, dto.SupportedStudentResponse{
			StudentProfileResponse: profile,
			MyTotalDonation:        t.Total,
			MyDonationCount:        t.Count,
		})
	}

	return &dto.MyStudentsResponse{Students: students, Count: len(students)}, nil
}

func (s *donationService) AllDonations(ctx context.Context) ([]commonDto.DonationDetailResponse, error) {
	donations, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return commonDto.NewDonationDetailResponses(donations), nil
}

func (s *donationService) Reconcile(ctx context.Context, fix bool) (*dto.ReconcileReport, error) {
	drifts, checked, err := s.repo.Reconcile(ctx, fix)
	if err != nil {
		return nil, err
	}

	for _, d := range drifts {
		slog.WarnContext(ctx, "ledger drift detected",
			slog.Uint64("student_profile_id", uint64(d.StudentProfileID)),
			slog.Float64("stored", d.Stored),
			slog.Float64("actual", d.Actual),
			slog.Bool("fixed", fix),
		)
	}

	return &dto.ReconcileReport{
		Checked: checked,
		Drifted: drifts,
		Fixed:   fix && len(drifts) > 0,
	}, nil
}

func (s *donationService) throttle(ctx context.Context, userID uint) error {
	allowed, err := s.limiter.Allow(ctx, userID, rateLimitAction)
	if err != nil {
		// Redis trouble should not block giving.
		slog.WarnContext(ctx, "donation rate limit check failed", slog.Any("error", err))
		return nil
	}
	if allowed {
		return nil
	}

	retry, _ := s.limiter.Retry(ctx, userID, rateLimitAction)
	if retry <= 0 {
		retry = time.Second
	}
	return apperror.New(apperror.ErrRateLimitExceeded,
		fmt.Sprintf("Please wait %s before donating again", retry.Round(time.Second)))
}

// release lifts the throttle after a donation that did not go through.
func (s *donationService) release(ctx context.Context, userID uint) {
	if err := s.limiter.Clear(ctx, userID, rateLimitAction); err != nil {
		slog.WarnContext(ctx, "failed to clear donation rate limit", slog.Any("error", err))
	}
}

func requireDonor(user *entity.User, message string) error {
	if user == nil {
		return apperror.Unauthenticated("Authentication required")
	}
	if user.Role != entity.RoleDonor {
		return apperror.Forbidden(message)
	}
	return nil
}

func humanizeWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
