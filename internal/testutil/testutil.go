// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	pkgdb "github.com/kotbarbarossa/yamdb-final/pkg/db"
	"github.com/kotbarbarossa/yamdb-final/pkg/hash"
)

// OpenDB returns a migrated in-memory sqlite database closed on cleanup.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	hash.Cost = bcrypt.MinCost

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func SeedTitle(t *testing.T, db *gorm.DB, name string) *models.Title {
	t.Helper()

	title := &models.Title{Name: name}
	require.NoError(t, db.Omit("Category", "Genres").Create(title).Error)
	return title
}
