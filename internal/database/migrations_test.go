package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/models"
)

func TestAutoMigrateCreatesTables(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db), "migrations must be idempotent")

	migrator := db.Migrator()
	require.True(t, migrator.HasTable(&models.ContactMessage{}))
	require.True(t, migrator.HasTable(&models.CacheEntry{}))
	for _, column := range []string{"id", "name", "email", "message", "created_at", "ip", "user_agent"} {
		require.True(t, migrator.HasColumn(&models.ContactMessage{}, column), column)
	}
	require.False(t, migrator.HasColumn(&models.ContactMessage{}, "updated_at"))
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
