package database

import (
	"log"
)

// RunMigrations runs all database migrations
func RunMigrations() error {
	log.Println("Running database migrations...")

	// AutoMigrate will create tables if they don't exist
	if err := DB.AutoMigrate(
		&User{},
		&Category{},
		&Book{},
		&Loan{},
		&AuditEntry{},
	); err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultSuperadmin creates a default superadmin if none exists
func SeedDefaultSuperadmin(passwordHash string) {
	var count int64
	if err := DB.Model(&User{}).Where("role = ?", RoleSuperadmin).Count(&count).Error; err != nil {
		log.Printf("Failed to check existing superadmin: %v", err)
		return
	}

	if count == 0 {
		admin := User{
			Username:     "superadmin",
			Email:        "superadmin@biblioteca.local",
			PasswordHash: passwordHash,
			Role:         RoleSuperadmin,
		}

		if err := DB.Create(&admin).Error; err != nil {
			log.Printf("Failed to create superadmin: %v", err)
		} else {
			log.Println("Default superadmin user created successfully.")
		}
	} else {
		log.Println("Superadmin user already exists.")
	}
}
