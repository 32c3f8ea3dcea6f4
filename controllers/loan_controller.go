package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"biblioteca/database"
)

// RejectLoanRequest contains the rejection payload
type RejectLoanRequest struct {
	Reason string `json:"reason"`
}

// RequestLoan creates a loan request for a book (client only)
func RequestLoan(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	bookID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	loan, err := loanService.Request(userID, uint(bookID))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Loan request submitted successfully", "loan": loan})
}

// GetLoans lists pending and active loans for management (admin only)
func GetLoans(c *gin.Context) {
	var pending []database.Loan
	var active []database.Loan

	err := database.DB.Preload("User").Preload("Book").
		Where("status = ?", LoanStatusPending).
		Order("requested_at").
		Find(&pending).Error
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	err = database.DB.Preload("User").Preload("Book").
		Where("status = ?", LoanStatusApproved).
		Order("due_at").
		Find(&active).Error
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending_loans": pending, "active_loans": active})
}

// GetMyLoans lists the authenticated client's open loans
func GetMyLoans(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var loans []database.Loan
	err := database.DB.Preload("Book").
		Where("user_id = ? AND status IN ?", userID, []string{LoanStatusPending, LoanStatusApproved}).
		Order("requested_at DESC").
		Find(&loans).Error
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, loans)
}

// GetLoanByID returns a loan; clients can only see their own
func GetLoanByID(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	var loan database.Loan
	err = database.DB.Preload("User").Preload("Book").Preload("ApprovedBy").First(&loan, loanID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if role == RoleClient && loan.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	c.JSON(http.StatusOK, loan)
}

// ApproveLoan approves a pending loan and takes a copy from inventory (admin only)
func ApproveLoan(c *gin.Context) {
	approverID, _, ok := currentUser(c)
	if !ok {
		return
	}

	loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	if err := loanService.Approve(uint(loanID), approverID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan approved successfully"})
}

// RejectLoan rejects a pending loan with a reason (admin only)
func RejectLoan(c *gin.Context) {
	approverID, _, ok := currentUser(c)
	if !ok {
		return
	}

	loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	// Body is optional; an empty reason gets a default in the service
	var rejectRequest RejectLoanRequest
	_ = c.ShouldBindJSON(&rejectRequest)

	if err := loanService.Reject(uint(loanID), approverID, rejectRequest.Reason); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan rejected successfully"})
}

// ReturnLoan returns an approved loan; the borrower or an admin may do it
func ReturnLoan(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	loanID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	var loan database.Loan
	err = database.DB.First(&loan, loanID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if role == RoleClient && loan.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	if err := loanService.Return(uint(loanID), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan returned successfully"})
}

// ExpireOverdueLoans marks overdue approved loans as expired (admin only)
func ExpireOverdueLoans(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := loanService.ExpireOverdue(actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Overdue loans expired", "expired": count})
}
