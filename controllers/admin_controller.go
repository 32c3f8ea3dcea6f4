package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioteca/database"
)

// AdminDashboard returns key statistics for the admin dashboard.
// Aggregates run as raw SQL against the reporting connection. The status
// values interpolated below are package constants, never user input.
func AdminDashboard(c *gin.Context) {
	counts := []struct {
		key   string
		query string
	}{
		{"total_clients", fmt.Sprintf("SELECT COUNT(*) FROM users WHERE role = '%s' AND deleted_at IS NULL", database.RoleClient)},
		{"total_books", "SELECT COUNT(*) FROM books WHERE deleted_at IS NULL"},
		{"pending_loans", fmt.Sprintf("SELECT COUNT(*) FROM loans WHERE status = '%s' AND deleted_at IS NULL", database.LoanStatusPending)},
		{"active_loans", fmt.Sprintf("SELECT COUNT(*) FROM loans WHERE status = '%s' AND deleted_at IS NULL", database.LoanStatusApproved)},
		{"audit_entries", "SELECT COUNT(*) FROM audit_entries"},
	}

	stats := gin.H{}
	for _, count := range counts {
		var total int64
		if err := database.ReportDB.QueryRow(count.query).Scan(&total); err != nil {
			log.Printf("Dashboard query failed (%s): %v", count.key, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		stats[count.key] = total
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
