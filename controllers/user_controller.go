package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"biblioteca/database"
	"biblioteca/utils"
)

// UpdateProfileRequest contains the editable profile fields
type UpdateProfileRequest struct {
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ChangePasswordRequest contains the password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// RegisterAdminRequest contains the data for creating an administrator
type RegisterAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// GetUserProfile returns the authenticated user's profile, with active
// loans attached for clients
func GetUserProfile(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	response := gin.H{"user": user}

	if role == RoleClient {
		var activeLoans []database.Loan
		err := database.DB.Preload("Book").
			Where("user_id = ? AND status = ?", userID, LoanStatusApproved).
			Order("approved_at DESC").
			Find(&activeLoans).Error
		if err != nil {
			log.Printf("Database error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
		response["active_loans"] = activeLoans
	}

	c.JSON(http.StatusOK, response)
}

// UpdateUserProfile updates the authenticated user's profile
func UpdateUserProfile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var updateRequest UpdateProfileRequest
	if err := c.ShouldBindJSON(&updateRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if updateRequest.Email != "" {
		user.Email = updateRequest.Email
	}
	user.Phone = updateRequest.Phone
	user.Address = updateRequest.Address

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		_, err := auditService.Record(tx, &userID, database.EntityUser, database.ActionUpdate,
			user.ID, "User profile updated", nil, nil)
		return err
	})
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

// ChangePassword changes the authenticated user's password
func ChangePassword(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var changePassRequest ChangePasswordRequest
	if err := c.ShouldBindJSON(&changePassRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !utils.CheckPasswordHash(changePassRequest.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	newPasswordHash, err := utils.HashPassword(changePassRequest.NewPassword)
	if err != nil {
		log.Printf("Password hashing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	if err := database.DB.Model(&user).Update("password_hash", newPasswordHash).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error changing password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// GetAllUsers returns all users (admin only)
func GetAllUsers(c *gin.Context) {
	var users []database.User
	if err := database.DB.Order("username").Find(&users).Error; err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// RegisterAdmin creates an administrator account (admin only)
func RegisterAdmin(c *gin.Context) {
	actorID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var registerRequest RegisterAdminRequest
	if err := c.ShouldBindJSON(&registerRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser database.User
	err := database.DB.Where("username = ?", registerRequest.Username).First(&existingUser).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already in use"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	hashedPassword, err := utils.HashPassword(registerRequest.Password)
	if err != nil {
		log.Printf("Password hashing error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	admin := database.User{
		Username:     registerRequest.Username,
		Email:        registerRequest.Email,
		PasswordHash: hashedPassword,
		Role:         database.RoleAdmin,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		_, err := auditService.Record(tx, &actorID, database.EntityUser, database.ActionCreate,
			admin.ID, "New administrator registered: "+admin.Username, nil, nil)
		return err
	})
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating administrator"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Administrator registered successfully", "user": admin})
}
