package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"biblioteca/database"
)

// BookService manages the catalogue. Every mutation carries its audit entry
// in the same transaction.
type BookService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewBookService creates a BookService on the given database
func NewBookService(db *gorm.DB, audit *AuditService) *BookService {
	return &BookService{db: db, audit: audit}
}

// BookInput carries the editable book fields
type BookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Copies      int    `json:"copies"`
	CategoryID  *uint  `json:"category_id"`
}

func (s *BookService) validateInput(tx *gorm.DB, input BookInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Author == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	if input.Copies < 0 {
		return fmt.Errorf("%w: copies cannot be negative", ErrValidation)
	}
	if input.CategoryID != nil {
		var category database.Category
		if err := tx.First(&category, *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: category %d does not exist", ErrValidation, *input.CategoryID)
			}
			return err
		}
	}
	return nil
}

// CreateBook adds a book to the catalogue with its availability derived
func (s *BookService) CreateBook(actorID uint, input BookInput) (*database.Book, error) {
	var book database.Book

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.validateInput(tx, input); err != nil {
			return err
		}

		book = database.Book{
			Title:          input.Title,
			Author:         input.Author,
			Publisher:      input.Publisher,
			Year:           input.Year,
			Description:    input.Description,
			Copies:         input.Copies,
			Status:         database.DeriveBookStatus(input.Copies),
			RegisteredByID: &actorID,
			CategoryID:     input.CategoryID,
		}
		if err := tx.Create(&book).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("Book created: %s", book.Title)
		_, err := s.audit.Record(tx, &actorID, database.EntityBook, database.ActionCreate, book.ID, details, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook edits a book and re-derives its availability from the new count
func (s *BookService) UpdateBook(actorID, bookID uint, input BookInput) (*database.Book, error) {
	var book database.Book

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
			}
			return err
		}

		if err := s.validateInput(tx, input); err != nil {
			return err
		}

		book.Title = input.Title
		book.Author = input.Author
		book.Publisher = input.Publisher
		book.Year = input.Year
		book.Description = input.Description
		book.Copies = input.Copies
		book.CategoryID = input.CategoryID
		book.Status = database.DeriveBookStatus(book.Copies)
		if err := tx.Save(&book).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("Book updated: %s", book.Title)
		_, err := s.audit.Record(tx, &actorID, database.EntityBook, database.ActionUpdate, book.ID, details, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book; blocked while it has pending or active loans
func (s *BookService) DeleteBook(actorID, bookID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var book database.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
			}
			return err
		}

		var active int64
		err := tx.Model(&database.Loan{}).
			Where("book_id = ? AND status IN ?",
				bookID, []string{database.LoanStatusPending, database.LoanStatusApproved}).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: book has pending or active loans", ErrIntegrity)
		}

		if err := tx.Delete(&book).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("Book deleted: %s", book.Title)
		_, err = s.audit.Record(tx, &actorID, database.EntityBook, database.ActionDelete, bookID, details, nil, nil)
		return err
	})
}

// CreateCategory adds a category
func (s *BookService) CreateCategory(actorID uint, name, description string) (*database.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	category := database.Category{Name: name, Description: description}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category; blocked while books reference it
func (s *BookService) DeleteCategory(actorID, categoryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category database.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
			}
			return err
		}

		var attached int64
		if err := tx.Model(&database.Book{}).Where("category_id = ?", categoryID).Count(&attached).Error; err != nil {
			return err
		}
		if attached > 0 {
			return fmt.Errorf("%w: category still has %d book(s) attached", ErrIntegrity, attached)
		}

		return tx.Delete(&category).Error
	})
}
