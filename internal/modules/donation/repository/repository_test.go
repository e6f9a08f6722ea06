package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errDiskFull = errors.New("disk full")

type ledgerFixture struct {
	db      *gorm.DB
	repo    DonationRepository
	donor   *entity.User
	profile *entity.StudentProfile
	ctx     context.Context
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	db := testutil.NewDB(t)
	donor := testutil.CreateUser(t, db, entity.RoleDonor, "donor_d")
	_, profile := testutil.CreateProfile(t, db, "student_s", 1000, true)
	return &ledgerFixture{
		db:      db,
		repo:    NewDonationRepository(db),
		donor:   donor,
		profile: profile,
		ctx:     context.Background(),
	}
}

// failProfileWrites makes every later UPDATE of student_profiles fail, after
// any donation row in the same transaction has already been written.
func (f *ledgerFixture) failProfileWrites(t *testing.T) {
	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_profile_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "student_profiles" {
			_ = tx.AddError(errDiskFull)
		}
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) state(t *testing.T) (int64, float64) {
	var count int64
	require.NoError(t, f.db.Model(&entity.Donation{}).Count(&count).Error)
	return count, testutil.Reload(t, f.db, f.profile).AmountRaised
}

func TestCreateWithLedgerRollsBackOnFailedCredit(t *testing.T) {
	f := newLedgerFixture(t)
	testutil.CreateDonation(t, f.db, f.donor.ID, f.profile.ID, 100, time.Time{})
	f.failProfileWrites(t)

	checked := false
	err := f.repo.CreateWithLedger(f.ctx, &entity.Donation{
		DonorID:          f.donor.ID,
		StudentProfileID: f.profile.ID,
		Amount:           250,
	}, func(*entity.StudentProfile) error {
		checked = true
		return nil
	})
	require.ErrorIs(t, err, errDiskFull)
	assert.True(t, checked)

	count, raised := f.state(t)
	assert.Equal(t, int64(1), count)
	assert.InDelta(t, 100, raised, 1e-9)
}

func TestCancelWithLedgerRollsBackOnFailedDebit(t *testing.T) {
	f := newLedgerFixture(t)
	d := testutil.CreateDonation(t, f.db, f.donor.ID, f.profile.ID, 100, time.Time{})
	f.failProfileWrites(t)

	_, err := f.repo.CancelWithLedger(f.ctx, d.ID, nil)
	require.ErrorIs(t, err, errDiskFull)

	count, raised := f.state(t)
	assert.Equal(t, int64(1), count)
	assert.InDelta(t, 100, raised, 1e-9)
}

func TestCancelWithLedgerNeverGoesNegative(t *testing.T) {
	f := newLedgerFixture(t)
	d := testutil.CreateDonation(t, f.db, f.donor.ID, f.profile.ID, 100, time.Time{})
	require.NoError(t, f.db.Model(&entity.StudentProfile{}).
		Where("id = ?", f.profile.ID).
		UpdateColumn("amount_raised", 40).Error)

	_, err := f.repo.CancelWithLedger(f.ctx, d.ID, nil)
	require.NoError(t, err)

	count, raised := f.state(t)
	assert.Zero(t, count)
	assert.Equal(t, 0.0, raised)
}

func TestReconcileRepairsNegativeNoise(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, f.db.Model(&entity.StudentProfile{}).
		Where("id = ?", f.profile.ID).
		UpdateColumn("amount_raised", -2.7755575615628914e-17).Error)

	drifts, checked, err := f.repo.Reconcile(f.ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	require.Len(t, drifts, 1)
	assert.Equal(t, f.profile.ID, drifts[0].StudentProfileID)

	_, _, err = f.repo.Reconcile(f.ctx, true)
	require.NoError(t, err)

	_, raised := f.state(t)
	assert.Equal(t, 0.0, raised)

	drifts, _, err = f.repo.Reconcile(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}
