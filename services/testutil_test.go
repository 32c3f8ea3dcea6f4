package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biblioteca/database"
)

// newTestDB opens a fresh in-memory SQLite database. The shared-cache name
// is unique per test so connections from one pool see the same database
// without leaking state across tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&database.User{},
		&database.Category{},
		&database.Book{},
		&database.Loan{},
		&database.AuditEntry{},
	)
	require.NoError(t, err)

	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *LoanService, *AuditService, *BookService) {
	t.Helper()

	db := newTestDB(t)
	audit := NewAuditService(db)
	return db, NewLoanService(db, audit), audit, NewBookService(db, audit)
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) database.User {
	t.Helper()

	user := database.User{Username: username, Email: username + "@test.local", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedBook(t *testing.T, db *gorm.DB, title string, copies int) database.Book {
	t.Helper()

	book := database.Book{
		Title:  title,
		Author: "Test Author",
		Copies: copies,
		Status: database.DeriveBookStatus(copies),
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

func loanAuditEntries(t *testing.T, db *gorm.DB, loanID uint) []database.AuditEntry {
	t.Helper()

	var entries []database.AuditEntry
	err := db.Where("entity_kind = ? AND entity_id = ?", database.EntityLoan, loanID).
		Order("created_at, id").
		Find(&entries).Error
	require.NoError(t, err)
	return entries
}
