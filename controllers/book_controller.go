package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biblioteca/database"
	"biblioteca/services"
)

// GetBooks lists the catalogue; supports ?q= title/author search
func GetBooks(c *gin.Context) {
	query := database.DB.Preload("Category").Order("title")

	if q := c.Query("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", pattern, pattern)
	}

	var books []database.Book
	if err := query.Find(&books).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, books)
}

// GetBookByID returns a single book with its category
func GetBookByID(c *gin.Context) {
	bookID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var book database.Book
	if err := database.DB.Preload("Category").Preload("RegisteredBy").First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// CreateBook adds a book to the catalogue (admin only)
func CreateBook(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	book, err := bookService.CreateBook(actorID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Book created successfully", "book": book})
}

// UpdateBook edits a book (admin only)
func UpdateBook(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var input services.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	book, err := bookService.UpdateBook(actorID, uint(bookID), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book updated successfully", "book": book})
}

// DeleteBook removes a book (admin only)
func DeleteBook(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	if err := bookService.DeleteBook(actorID, uint(bookID)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
