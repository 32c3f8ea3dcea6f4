package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/database"
)

func TestCreateBookDerivesAvailability(t *testing.T) {
	db, _, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	available, err := books.CreateBook(admin.ID, BookInput{Title: "In Stock", Author: "Someone", Copies: 3})
	require.NoError(t, err)
	assert.Equal(t, database.BookStatusAvailable, available.Status)

	exhausted, err := books.CreateBook(admin.ID, BookInput{Title: "Out of Stock", Author: "Someone", Copies: 0})
	require.NoError(t, err)
	assert.Equal(t, database.BookStatusUnavailable, exhausted.Status)

	var entries []database.AuditEntry
	err = db.Where("entity_kind = ? AND entity_id = ?", database.EntityBook, available.ID).Find(&entries).Error
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, database.ActionCreate, entries[0].Action)
}

func TestCreateBookValidation(t *testing.T) {
	db, _, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	_, err := books.CreateBook(admin.ID, BookInput{Author: "No Title", Copies: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = books.CreateBook(admin.ID, BookInput{Title: "No Author", Copies: 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = books.CreateBook(admin.ID, BookInput{Title: "Negative", Author: "Someone", Copies: -1})
	require.ErrorIs(t, err, ErrValidation)

	missing := uint(9999)
	_, err = books.CreateBook(admin.ID, BookInput{Title: "Bad Category", Author: "Someone", Copies: 1, CategoryID: &missing})
	require.ErrorIs(t, err, ErrValidation)

	// Nothing was persisted and nothing was audited
	var count int64
	require.NoError(t, db.Model(&database.Book{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&database.AuditEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateBookRederivesAvailability(t *testing.T) {
	db, _, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	book, err := books.CreateBook(admin.ID, BookInput{Title: "Shifting", Author: "Someone", Copies: 1})
	require.NoError(t, err)

	updated, err := books.UpdateBook(admin.ID, book.ID, BookInput{Title: "Shifting", Author: "Someone", Copies: 0})
	require.NoError(t, err)
	assert.Equal(t, database.BookStatusUnavailable, updated.Status)

	updated, err = books.UpdateBook(admin.ID, book.ID, BookInput{Title: "Shifting", Author: "Someone", Copies: 5})
	require.NoError(t, err)
	assert.Equal(t, database.BookStatusAvailable, updated.Status)
	assert.Equal(t, 5, updated.Copies)
}

func TestDeleteBookBlockedByOpenLoans(t *testing.T) {
	db, loans, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)
	client := seedUser(t, db, "client", database.RoleClient)

	book, err := books.CreateBook(admin.ID, BookInput{Title: "Wanted", Author: "Someone", Copies: 1})
	require.NoError(t, err)

	loan, err := loans.Request(client.ID, book.ID)
	require.NoError(t, err)

	err = books.DeleteBook(admin.ID, book.ID)
	require.ErrorIs(t, err, ErrIntegrity)

	// Deletable once the loan reaches a terminal state
	require.NoError(t, loans.Reject(loan.ID, admin.ID, "catalogue cleanup"))
	require.NoError(t, books.DeleteBook(admin.ID, book.ID))

	var entries []database.AuditEntry
	err = db.Where("entity_kind = ? AND entity_id = ? AND action = ?",
		database.EntityBook, book.ID, database.ActionDelete).Find(&entries).Error
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeleteCategoryBlockedByBooks(t *testing.T) {
	db, _, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	category, err := books.CreateCategory(admin.ID, "Novela", "Long-form fiction")
	require.NoError(t, err)

	book, err := books.CreateBook(admin.ID, BookInput{
		Title: "Attached", Author: "Someone", Copies: 1, CategoryID: &category.ID,
	})
	require.NoError(t, err)

	err = books.DeleteCategory(admin.ID, category.ID)
	require.ErrorIs(t, err, ErrIntegrity)

	require.NoError(t, books.DeleteBook(admin.ID, book.ID))
	require.NoError(t, books.DeleteCategory(admin.ID, category.ID))
}

func TestCreateCategoryValidation(t *testing.T) {
	db, _, _, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	_, err := books.CreateCategory(admin.ID, "", "missing name")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(database.RoleAdmin, database.RoleAdmin, database.RoleSuperadmin))
	assert.NoError(t, RequireRole(database.RoleSuperadmin, database.RoleAdmin, database.RoleSuperadmin))
	assert.ErrorIs(t, RequireRole(database.RoleClient, database.RoleAdmin, database.RoleSuperadmin), ErrPermission)
}
