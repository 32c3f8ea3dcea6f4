package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioteca/database"
	"biblioteca/services"
)

var (
	auditService *services.AuditService
	loanService  *services.LoanService
	bookService  *services.BookService
)

// InitServices wires the service layer; call after database.InitDB
func InitServices() {
	auditService = services.NewAuditService(database.DB)
	loanService = services.NewLoanService(database.DB, auditService)
	bookService = services.NewBookService(database.DB, auditService)
}

// handleServiceError translates the service error taxonomy to an HTTP
// response. Business-rule violations never bubble further than this.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, services.ErrIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Service error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

// currentUser returns the acting user's ID and role from the auth middleware
func currentUser(c *gin.Context) (uint, string, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found"})
		return 0, "", false
	}
	userID, ok := userIDValue.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID type"})
		return 0, "", false
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return userID, roleStr, true
}
