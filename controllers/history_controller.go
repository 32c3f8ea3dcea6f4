package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"biblioteca/database"
	"biblioteca/services"
)

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// GetHistory lists the full audit trail, newest first (admin only)
func GetHistory(c *gin.Context) {
	result, err := auditService.Query(services.AuditFilter{}, pageParam(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistoryByEntity lists audit entries for one entity (admin only).
// The entity type segment is case-insensitive.
func GetHistoryByEntity(c *gin.Context) {
	entityKind := strings.ToUpper(c.Param("entityType"))

	entityID, err := strconv.ParseUint(c.Param("entityId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	result, err := auditService.Query(services.AuditFilter{
		EntityKind: entityKind,
		EntityID:   uint(entityID),
	}, pageParam(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyLoanHistory lists the authenticated client's own loan audit entries
func GetMyLoanHistory(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := auditService.Query(services.AuditFilter{
		EntityKind: database.EntityLoan,
		ActorID:    userID,
	}, pageParam(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
