package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"biblioteca/database"
)

// CategoryRequest contains the data for category creation
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GetCategories lists all categories
func GetCategories(c *gin.Context) {
	var categories []database.Category
	if err := database.DB.Order("name").Find(&categories).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category (admin only)
func CreateCategory(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var categoryRequest CategoryRequest
	if err := c.ShouldBindJSON(&categoryRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	category, err := bookService.CreateCategory(actorID, categoryRequest.Name, categoryRequest.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created successfully", "category": category})
}

// DeleteCategory removes a category; fails with 409 while books reference it
func DeleteCategory(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := bookService.DeleteCategory(actorID, uint(categoryID)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
