package repository

import (
	"context"
	"math"

	"elimufund.com/backend/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledgerEpsilon absorbs float rounding when comparing stored and recomputed sums.
const ledgerEpsilon = 1e-6

type ProfileTotal struct {
	StudentProfileID uint
	Total            float64
	Count            int64
}

type LedgerDrift struct {
	StudentProfileID uint    `json:"student_profile_id"`
	Stored           float64 `json:"stored_amount_raised"`
	Actual           float64 `json:"actual_donation_sum"`
}

type DonationRepository interface {
	// CreateWithLedger locks the target profile, lets check veto the donation
	// against the locked row, then inserts it and credits amount_raised.
	CreateWithLedger(ctx context.Context, donation *entity.Donation, check func(profile *entity.StudentProfile) error) error
	// CancelWithLedger locks the donation, lets check veto the cancellation,
	// then deletes it and debits amount_raised.
	CancelWithLedger(ctx context.Context, id uint, check func(donation *entity.Donation) error) (*entity.Donation, error)
	ListByDonor(ctx context.Context, donorID uint) ([]entity.Donation, error)
	ListAll(ctx context.Context) ([]entity.Donation, error)
	TotalsByDonor(ctx context.Context, donorID uint) ([]ProfileTotal, error)
	FindProfiles(ctx context.Context, ids []uint) ([]entity.StudentProfile, error)
	RecentByProfile(ctx context.Context, profileID uint, limit int) ([]entity.Donation, error)
	CountDonors(ctx context.Context, profileID uint) (int64, error)
	Totals(ctx context.Context) (count int64, sum float64, err error)
	Reconcile(ctx context.Context, fix bool) ([]LedgerDrift, int, error)
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) CreateWithLedger(ctx context.Context, donation *entity.Donation, check func(profile *entity.StudentProfile) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile entity.StudentProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", donation.StudentProfileID).
			First(&profile).Error; err != nil {
			return err
		}

		if check != nil {
			if err := check(&profile); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Create(donation).Error; err != nil {
			return err
		}

		// The row is locked, so the new balance is written as an absolute value in cents.
		raised := entity.RoundMoney(profile.AmountRaised + donation.Amount)
		if err := tx.Model(&entity.StudentProfile{}).
			Where("id = ?", profile.ID).
			UpdateColumn("amount_raised", raised).Error; err != nil {
			return err
		}

		profile.AmountRaised = raised
		donation.StudentProfile = &profile
		return nil
	})
}

func (r *donationRepository) CancelWithLedger(ctx context.Context, id uint, check func(donation *entity.Donation) error) (*entity.Donation, error) {
	var donation entity.Donation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&donation).Error; err != nil {
			return err
		}

		if check != nil {
			if err := check(&donation); err != nil {
				return err
			}
		}

		var profile entity.StudentProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", donation.StudentProfileID).
			First(&profile).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", donation.ID).Delete(&entity.Donation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		raised := math.Max(0, entity.RoundMoney(profile.AmountRaised-donation.Amount))
		return tx.Model(&entity.StudentProfile{}).
			Where("id = ?", profile.ID).
			UpdateColumn("amount_raised", raised).Error
	})
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) ListByDonor(ctx context.Context, donorID uint) ([]entity.Donation, error) {
	donations := make([]entity.Donation, 0)
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("StudentProfile").
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&donations).Error
	return donations, err
}

func (r *donationRepository) ListAll(ctx context.Context) ([]entity.Donation, error) {
	donations := make([]entity.Donation, 0)
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("StudentProfile").
		Order("created_at DESC").
		Order("id DESC").
		Find(&donations).Error
	return donations, err
}

// TotalsByDonor sums a donor's giving per profile, most recently supported first.
func (r *donationRepository) TotalsByDonor(ctx context.Context, donorID uint) ([]ProfileTotal, error) {
	totals := make([]ProfileTotal, 0)
	err := r.db.WithContext(ctx).
		Model(&entity.Donation{}).
		Select("student_profile_id, SUM(amount) AS total, COUNT(*) AS count").
		Where("donor_id = ?", donorID).
		Group("student_profile_id").
		Order("MAX(created_at) DESC").
		Scan(&totals).Error
	return totals, err
}

func (r *donationRepository) FindProfiles(ctx context.Context, ids []uint) ([]entity.StudentProfile, error) {
	profiles := make([]entity.StudentProfile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

func (r *donationRepository) RecentByProfile(ctx context.Context, profileID uint, limit int) ([]entity.Donation, error) {
	donations := make([]entity.Donation, 0, limit)
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("student_profile_id = ?", profileID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

// CountDonors counts distinct donors, so repeat giving by one donor counts once.
func (r *donationRepository) CountDonors(ctx context.Context, profileID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Donation{}).
		Where("student_profile_id = ?", profileID).
		Distinct("donor_id").
		Count(&count).Error
	return count, err
}

func (r *donationRepository) Totals(ctx context.Context) (int64, float64, error) {
	var row struct {
		Count int64
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Donation{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error
	return row.Count, row.Total, err
}

// Reconcile compares every profile's stored amount_raised with the sum of its
// donations. With fix set, drifted counters are rewritten from the sum in the
// same transaction. A negative stored value always counts as drift. It returns the drifts found and the number of profiles checked.
func (r *donationRepository) Reconcile(ctx context.Context, fix bool) ([]LedgerDrift, int, error) {
	drifts := make([]LedgerDrift, 0)
	checked := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []LedgerDrift
		if err := tx.Table("student_profiles AS sp").
			Select("sp.id AS student_profile_id, sp.amount_raised AS stored, COALESCE(SUM(d.amount), 0) AS actual").
			Joins("LEFT JOIN donations d ON d.student_profile_id = sp.id").
			Group("sp.id, sp.amount_raised").
			Order("sp.id").
			Scan(&rows).Error; err != nil {
			return err
		}

		checked = len(rows)
		for _, row := range rows {
			if row.Stored >= 0 && math.Abs(row.Stored-row.Actual) <= ledgerEpsilon {
				continue
			}
			drifts = append(drifts, row)

			if !fix {
				continue
			}
			if err := tx.Model(&entity.StudentProfile{}).
				Where("id = ?", row.StudentProfileID).
				UpdateColumn("amount_raised", entity.RoundMoney(row.Actual)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return drifts, checked, nil
}
