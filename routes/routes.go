package routes

import (
	"github.com/gin-gonic/gin"

	"biblioteca/controllers"
	"biblioteca/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine) {
	// Public routes (no authentication required)
	public := r.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/register", controllers.Register)
		}
	}

	// Protected routes (authentication required)
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh", controllers.RefreshToken)

		protected.GET("/profile", controllers.GetUserProfile)
		protected.PUT("/profile", controllers.UpdateUserProfile)
		protected.POST("/profile/change-password", controllers.ChangePassword)

		// Catalogue
		books := protected.Group("/books")
		{
			books.GET("", controllers.GetBooks)
			books.GET("/:id", controllers.GetBookByID)
			books.POST("", middleware.AdminAuthMiddleware(), controllers.CreateBook)
			books.PUT("/:id", middleware.AdminAuthMiddleware(), controllers.UpdateBook)
			books.DELETE("/:id", middleware.AdminAuthMiddleware(), controllers.DeleteBook)
			books.POST("/:id/request", middleware.ClientAuthMiddleware(), controllers.RequestLoan)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", controllers.GetCategories)
			categories.POST("", middleware.AdminAuthMiddleware(), controllers.CreateCategory)
			categories.DELETE("/:id", middleware.AdminAuthMiddleware(), controllers.DeleteCategory)
		}

		// Loans
		loans := protected.Group("/loans")
		{
			loans.GET("", middleware.AdminAuthMiddleware(), controllers.GetLoans)
			loans.GET("/mine", middleware.ClientAuthMiddleware(), controllers.GetMyLoans)
			loans.GET("/:id", controllers.GetLoanByID)
			loans.POST("/:id/approve", middleware.AdminAuthMiddleware(), controllers.ApproveLoan)
			loans.POST("/:id/reject", middleware.AdminAuthMiddleware(), controllers.RejectLoan)
			loans.POST("/:id/return", controllers.ReturnLoan)
			loans.POST("/expire-overdue", middleware.AdminAuthMiddleware(), controllers.ExpireOverdueLoans)
		}

		// Audit trail
		history := protected.Group("/history")
		{
			history.GET("", middleware.AdminAuthMiddleware(), controllers.GetHistory)
			history.GET("/mine", middleware.ClientAuthMiddleware(), controllers.GetMyLoanHistory)
			history.GET("/:entityType/:entityId", middleware.AdminAuthMiddleware(), controllers.GetHistoryByEntity)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/users", controllers.GetAllUsers)
			admin.POST("/users", controllers.RegisterAdmin)
			admin.GET("/dashboard", controllers.AdminDashboard)
		}
	}
}
