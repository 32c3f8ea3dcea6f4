package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biblioteca/database"
)

// LoanService enforces the loan lifecycle:
//
//	PENDIENTE -> APROBADO -> DEVUELTO | VENCIDO
//	PENDIENTE -> RECHAZADO
//
// Every transition runs in one transaction together with its inventory
// adjustment and its audit entry; they commit or roll back as a unit.
type LoanService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewLoanService creates a LoanService on the given database
func NewLoanService(db *gorm.DB, audit *AuditService) *LoanService {
	return &LoanService{db: db, audit: audit}
}

// lockForUpdate adds a row lock on dialects that support it. SQLite has no
// FOR UPDATE; its single-writer transaction already serializes the update.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Request creates a PENDIENTE loan for the user on the book
func (s *LoanService) Request(userID, bookID uint) (*database.Loan, error) {
	var loan database.Loan

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book database.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
			}
			return err
		}

		if book.Status != database.BookStatusAvailable || book.Copies <= 0 {
			return fmt.Errorf("%w: book %q is not available for loan", ErrValidation, book.Title)
		}

		var active int64
		err := tx.Model(&database.Loan{}).
			Where("user_id = ? AND book_id = ? AND status IN ?",
				userID, bookID, []string{database.LoanStatusPending, database.LoanStatusApproved}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: user already has a pending or active loan for this book", ErrValidation)
		}

		loan = database.Loan{
			UserID:      userID,
			BookID:      bookID,
			Status:      database.LoanStatusPending,
			RequestedAt: time.Now(),
		}
		if err := tx.Create(&loan).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("Loan requested for %q", book.Title)
		_, err = s.audit.Record(tx, &userID, database.EntityLoan, database.ActionCreate, loan.ID, details, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Approve moves a PENDIENTE loan to APROBADO, taking one copy from inventory.
// The copy count is re-read under lock right before the decrement: the
// book's status field may be stale, the count is authoritative.
func (s *LoanService) Approve(loanID, approverID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan database.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}

		if loan.Status != database.LoanStatusPending {
			return fmt.Errorf("%w: loan is not pending approval", ErrValidation)
		}

		var book database.Book
		if err := lockForUpdate(tx).First(&book, loan.BookID).Error; err != nil {
			return err
		}
		if book.Copies <= 0 {
			return fmt.Errorf("%w: no copies available to approve this loan", ErrValidation)
		}

		now := time.Now()
		due := now.AddDate(0, 0, database.LoanPeriodDays)
		loan.Status = database.LoanStatusApproved
		loan.ApprovedByID = &approverID
		loan.ApprovedAt = &now
		loan.DueAt = &due
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		book.Copies--
		book.Status = database.DeriveBookStatus(book.Copies)
		if err := tx.Save(&book).Error; err != nil {
			return err
		}

		prev, next := database.LoanStatusPending, database.LoanStatusApproved
		details := fmt.Sprintf("Loan approved for %q", book.Title)
		_, err := s.audit.Record(tx, &approverID, database.EntityLoan, database.ActionStateChange, loan.ID, details, &prev, &next)
		return err
	})
}

// Reject moves a PENDIENTE loan to RECHAZADO, recording the reason.
// Inventory is untouched.
func (s *LoanService) Reject(loanID, approverID uint, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan database.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}

		if loan.Status != database.LoanStatusPending {
			return fmt.Errorf("%w: loan is not pending approval", ErrValidation)
		}

		var book database.Book
		if err := tx.First(&book, loan.BookID).Error; err != nil {
			return err
		}

		if reason == "" {
			reason = "No reason given"
		}

		loan.Status = database.LoanStatusRejected
		loan.ApprovedByID = &approverID
		loan.Notes = reason
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		prev, next := database.LoanStatusPending, database.LoanStatusRejected
		details := fmt.Sprintf("Loan rejected for %q (%s)", book.Title, reason)
		_, err := s.audit.Record(tx, &approverID, database.EntityLoan, database.ActionStateChange, loan.ID, details, &prev, &next)
		return err
	})
}

// Return moves an APROBADO loan to DEVUELTO and puts the copy back
func (s *LoanService) Return(loanID, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var loan database.Loan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}

		if loan.Status != database.LoanStatusApproved {
			return fmt.Errorf("%w: only approved loans can be returned", ErrValidation)
		}

		var book database.Book
		if err := lockForUpdate(tx).First(&book, loan.BookID).Error; err != nil {
			return err
		}

		now := time.Now()
		loan.Status = database.LoanStatusReturned
		loan.ReturnedAt = &now
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		book.Copies++
		book.Status = database.DeriveBookStatus(book.Copies)
		if err := tx.Save(&book).Error; err != nil {
			return err
		}

		prev, next := database.LoanStatusApproved, database.LoanStatusReturned
		details := fmt.Sprintf("Loan returned for %q", book.Title)
		_, err := s.audit.Record(tx, &actorID, database.EntityLoan, database.ActionStateChange, loan.ID, details, &prev, &next)
		return err
	})
}

// ExpireOverdue marks every APROBADO loan past its due date as VENCIDO and
// returns how many were expired. The copy stays out: an expired book has not
// come back. Triggered explicitly by an administrator, not by a scheduler.
func (s *LoanService) ExpireOverdue(actorID uint) (int, error) {
	expired := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var overdue []database.Loan
		err := tx.Where("status = ? AND due_at < ?", database.LoanStatusApproved, time.Now()).
			Find(&overdue).Error
		if err != nil {
			return err
		}

		for i := range overdue {
			loan := &overdue[i]

			var book database.Book
			if err := tx.First(&book, loan.BookID).Error; err != nil {
				return err
			}

			loan.Status = database.LoanStatusExpired
			if err := tx.Save(loan).Error; err != nil {
				return err
			}

			prev, next := database.LoanStatusApproved, database.LoanStatusExpired
			details := fmt.Sprintf("Loan expired for %q", book.Title)
			if _, err := s.audit.Record(tx, &actorID, database.EntityLoan, database.ActionStateChange, loan.ID, details, &prev, &next); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
