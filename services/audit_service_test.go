package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca/database"
)

func TestRecordAssignsTimestamp(t *testing.T) {
	db, _, audit, _ := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)
	book := seedBook(t, db, "Some Book", 1)

	before := time.Now()
	entry, err := audit.Record(db, &admin.ID, database.EntityBook, database.ActionCreate, book.ID, "Book created", nil, nil)
	require.NoError(t, err)

	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.Before(before))
	require.NotNil(t, entry.UserID)
	assert.Equal(t, admin.ID, *entry.UserID)
}

func TestRecordRejectsUnknownEntityKind(t *testing.T) {
	db, _, audit, _ := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	_, err := audit.Record(db, &admin.ID, "PAGO", database.ActionCreate, 1, "bogus", nil, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestQueryFiltersByEntity(t *testing.T) {
	db, loans, audit, _ := newTestServices(t)
	client := seedUser(t, db, "client", database.RoleClient)
	admin := seedUser(t, db, "admin", database.RoleAdmin)
	bookA := seedBook(t, db, "Book A", 1)
	bookB := seedBook(t, db, "Book B", 1)

	loanA, err := loans.Request(client.ID, bookA.ID)
	require.NoError(t, err)
	loanB, err := loans.Request(client.ID, bookB.ID)
	require.NoError(t, err)
	require.NoError(t, loans.Approve(loanA.ID, admin.ID))

	page, err := audit.Query(AuditFilter{EntityKind: database.EntityLoan, EntityID: loanA.ID}, 1)
	require.NoError(t, err)

	require.Len(t, page.Records, 2)
	assert.EqualValues(t, 2, page.Total)
	for _, record := range page.Records {
		assert.Equal(t, database.EntityLoan, record.Entry.EntityKind)
		assert.Equal(t, loanA.ID, record.Entry.EntityID)
	}

	// Newest first: the approval precedes the creation in the listing
	assert.Equal(t, database.ActionStateChange, page.Records[0].Entry.Action)
	assert.Equal(t, database.ActionCreate, page.Records[1].Entry.Action)

	// The other loan's trail is untouched by the filter
	otherPage, err := audit.Query(AuditFilter{EntityKind: database.EntityLoan, EntityID: loanB.ID}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherPage.Total)
}

func TestQueryPaginatesAtFixedPageSize(t *testing.T) {
	db, _, audit, _ := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)
	book := seedBook(t, db, "Paged Book", 1)

	for i := 0; i < PageSize+5; i++ {
		_, err := audit.Record(db, &admin.ID, database.EntityBook, database.ActionUpdate, book.ID,
			fmt.Sprintf("Edit %d", i), nil, nil)
		require.NoError(t, err)
	}

	first, err := audit.Query(AuditFilter{EntityKind: database.EntityBook}, 1)
	require.NoError(t, err)
	assert.Len(t, first.Records, PageSize)
	assert.EqualValues(t, PageSize+5, first.Total)
	assert.Equal(t, 2, first.Pages)

	second, err := audit.Query(AuditFilter{EntityKind: database.EntityBook}, 2)
	require.NoError(t, err)
	assert.Len(t, second.Records, 5)

	// Newest first across pages
	assert.Equal(t, "Edit 24", first.Records[0].Entry.Details)
	assert.Equal(t, "Edit 0", second.Records[4].Entry.Details)
}

func TestQueryResolvesEntities(t *testing.T) {
	db, _, audit, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	book, err := books.CreateBook(admin.ID, BookInput{Title: "Resolved", Author: "Someone", Copies: 1})
	require.NoError(t, err)

	page, err := audit.Query(AuditFilter{EntityKind: database.EntityBook, EntityID: book.ID}, 1)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	resolved, ok := page.Records[0].Entity.(*database.Book)
	require.True(t, ok)
	assert.Equal(t, "Resolved", resolved.Title)
}

func TestQueryToleratesDeletedEntities(t *testing.T) {
	db, _, audit, books := newTestServices(t)
	admin := seedUser(t, db, "admin", database.RoleAdmin)

	book, err := books.CreateBook(admin.ID, BookInput{Title: "Doomed", Author: "Someone", Copies: 1})
	require.NoError(t, err)
	require.NoError(t, books.DeleteBook(admin.ID, book.ID))

	page, err := audit.Query(AuditFilter{EntityKind: database.EntityBook, EntityID: book.ID}, 1)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)

	// Both the creation and deletion entries survive; neither resolves
	for _, record := range page.Records {
		assert.Nil(t, record.Entity)
	}
}

func TestQueryFiltersByActor(t *testing.T) {
	db, loans, audit, _ := newTestServices(t)
	alice := seedUser(t, db, "alice", database.RoleClient)
	bob := seedUser(t, db, "bob", database.RoleClient)
	bookA := seedBook(t, db, "Book A", 2)
	bookB := seedBook(t, db, "Book B", 2)

	_, err := loans.Request(alice.ID, bookA.ID)
	require.NoError(t, err)
	_, err = loans.Request(bob.ID, bookB.ID)
	require.NoError(t, err)

	page, err := audit.Query(AuditFilter{EntityKind: database.EntityLoan, ActorID: alice.ID}, 1)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, alice.ID, *page.Records[0].Entry.UserID)
}

func TestQueryRejectsUnknownKind(t *testing.T) {
	_, _, audit, _ := newTestServices(t)

	_, err := audit.Query(AuditFilter{EntityKind: "PAGO"}, 1)
	require.ErrorIs(t, err, ErrValidation)
}
