package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "elimufund.db?_foreign_keys=on", withForeignKeys("elimufund.db"))
	assert.Equal(t, ":memory:?cache=shared&_foreign_keys=on", withForeignKeys(":memory:?cache=shared"))
	assert.Equal(t, "x.db?_foreign_keys=1", withForeignKeys("x.db?_foreign_keys=1"))
}

func TestConnectSQLiteMemory(t *testing.T) {
	db, err := Connect(Options{SQLitePath: ":memory:"})
	assert.NoError(t, err)

	var one int
	assert.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
