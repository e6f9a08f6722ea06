package bootstrap

import (
	"context"
	"testing"

	"elimufund.com/backend/internal/entity"
	"elimufund.com/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdminUserIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	seed := AdminSeed{Email: "Root@ElimuFund.com", Username: "root", Password: "s3cret-pass"}

	created, err := SeedAdminUser(ctx, db, testutil.Hasher, seed)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdminUser(ctx, db, testutil.Hasher, seed)
	require.NoError(t, err)
	assert.False(t, created)

	var admins []entity.User
	require.NoError(t, db.Where("role = ?", entity.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@elimufund.com", admins[0].Email)
	assert.True(t, admins[0].CheckPassword(testutil.Hasher, "s3cret-pass"))
}

func TestSeedAdminUserRequiresPassword(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := SeedAdminUser(context.Background(), db, testutil.Hasher, AdminSeed{Email: "a@b.com", Username: "admin"})
	assert.Error(t, err)
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&entity.Supporter{}))
}
