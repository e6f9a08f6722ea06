package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"elimufund.com/backend/internal/entity"
	studentRepo "elimufund.com/backend/internal/modules/student/repository"
	"elimufund.com/backend/internal/modules/supporter/repository"
	"elimufund.com/backend/internal/projection"
	"elimufund.com/backend/internal/testutil"
	"elimufund.com/backend/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (SupporterService, *gorm.DB) {
	db := testutil.NewDB(t)
	repo := repository.NewSupporterRepository(db)
	svc := NewSupporterService(repo, studentRepo.NewStudentRepository(db), projection.NewProjector(repo))
	return svc, db
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&entity.Supporter{}).Count(&n).Error)
	return n
}

func TestFollowUnfollowScenario(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	donor := testutil.CreateUser(t, db, entity.RoleDonor, "donor_d")
	_, profile := testutil.CreateProfile(t, db, "student_s", 1000, true)

	res, err := svc.Follow(ctx, donor, profile.ID)
	require.NoError(t, err)
	assert.True(t, res.IsFollowing)
	assert.Equal(t, "Successfully following "+profile.FullName, res.Message)

	status, err := svc.Status(ctx, donor, profile.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.Equal(t, profile.ID, status.StudentID)

	_, err = svc.Follow(ctx, donor, profile.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, int64(1), countRows(t, db))

	res, err = svc.Unfollow(ctx, donor, profile.ID)
	require.NoError(t, err)
	assert.False(t, res.IsFollowing)

	status, err = svc.Status(ctx, donor, profile.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	_, err = svc.Unfollow(ctx, donor, profile.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, countRows(t, db))
}

func TestFollowRules(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	donor := testutil.CreateUser(t, db, entity.RoleDonor, "donor_d")
	admin := testutil.CreateUser(t, db, entity.RoleAdmin, "admin")
	student, profile := testutil.CreateProfile(t, db, "student_s", 1000, true)

	_, err := svc.Follow(ctx, donor, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Follow(ctx, student, profile.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.Follow(ctx, admin, profile.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.Unfollow(ctx, student, profile.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Status(ctx, donor, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.Supporters(ctx, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestConcurrentFollowKeepsOneRow(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	donor := testutil.CreateUser(t, db, entity.RoleDonor, "donor_d")
	_, profile := testutil.CreateProfile(t, db, "student_s", 1000, true)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Follow(ctx, donor, profile.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperror.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestRepositoryRejectsDuplicatePair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSupporterRepository(db)
	donor := testutil.CreateUser(t, db, entity.RoleDonor, "donor_d")
	_, profile := testutil.CreateProfile(t, db, "student_s", 1000, true)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Supporter{UserID: donor.ID, StudentProfileID: profile.ID}))
	err := repo.Create(ctx, &entity.Supporter{UserID: donor.ID, StudentProfileID: profile.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestListings(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	d1 := testutil.CreateUser(t, db, entity.RoleDonor, "donor_one")
	d2 := testutil.CreateUser(t, db, entity.RoleDonor, "donor_two")
	_, s1 := testutil.CreateProfile(t, db, "student_a", 1000, true)
	_, s2 := testutil.CreateProfile(t, db, "student_b", 1000, false)

	for _, pair := range []struct {
		user    *entity.User
		profile *entity.StudentProfile
	}{{d1, s1}, {d1, s2}, {d2, s1}} {
		_, err := svc.Follow(ctx, pair.user, pair.profile.ID)
		require.NoError(t, err)
	}

	followed, err := svc.Followed(ctx, d1)
	require.NoError(t, err)
	require.Equal(t, 2, followed.Count)
	counts := map[uint]int64{}
	for _, st := range followed.Students {
		assert.True(t, st.IsFollowing)
		counts[st.ID] = st.FollowersCount
	}
	assert.Equal(t, map[uint]int64{s1.ID: 2, s2.ID: 1}, counts)

	supporters, err := svc.Supporters(ctx, s1.ID)
	require.NoError(t, err)
	require.Equal(t, 2, supporters.Count)
	names := []string{supporters.Supporters[0].Username, supporters.Supporters[1].Username}
	assert.ElementsMatch(t, []string{"donor_one", "donor_two"}, names)

	none, err := svc.Followed(ctx, d2)
	require.NoError(t, err)
	assert.Equal(t, 1, none.Count)
}
