package database

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the system
type User struct {
	gorm.Model
	Username     string `json:"username" gorm:"uniqueIndex;size:150"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role" gorm:"size:20"`
	Phone        string `json:"phone" gorm:"size:15"`
	Address      string `json:"address"`
}

// Category groups books; deletion is blocked while books reference it
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;size:100"`
	Description string `json:"description"`
}

// Book represents a catalogued title and its lendable copy count
type Book struct {
	gorm.Model
	Title          string    `json:"title" gorm:"size:200"`
	Author         string    `json:"author" gorm:"size:100"`
	Publisher      string    `json:"publisher" gorm:"size:100"`
	Year           int       `json:"year"`
	Description    string    `json:"description"`
	Status         string    `json:"status" gorm:"size:20"`
	Copies         int       `json:"copies" gorm:"default:1"`
	RegisteredByID *uint     `json:"registered_by_id"`
	CategoryID     *uint     `json:"category_id"`
	RegisteredBy   *User     `gorm:"foreignKey:RegisteredByID" json:"registered_by,omitempty"`
	Category       *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Loan represents a book borrowed by a user
type Loan struct {
	gorm.Model
	UserID       uint       `json:"user_id"`
	BookID       uint       `json:"book_id"`
	RequestedAt  time.Time  `json:"requested_at"`
	ApprovedAt   *time.Time `json:"approved_at"`
	DueAt        *time.Time `json:"due_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	Status       string     `json:"status" gorm:"size:20"`
	ApprovedByID *uint      `json:"approved_by_id"`
	Notes        string     `json:"notes"`
	User         User       `gorm:"foreignKey:UserID" json:"user"`
	Book         Book       `gorm:"foreignKey:BookID" json:"book"`
	ApprovedBy   *User      `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
}

// Constants for status values
const (
	// Book availability
	BookStatusAvailable   = "DISPONIBLE"
	BookStatusUnavailable = "NO_DISPONIBLE"

	// Loan lifecycle
	LoanStatusPending  = "PENDIENTE"
	LoanStatusApproved = "APROBADO"
	LoanStatusRejected = "RECHAZADO"
	LoanStatusReturned = "DEVUELTO"
	LoanStatusExpired  = "VENCIDO"

	// User roles
	RoleClient     = "CLIENTE"
	RoleAdmin      = "ADMINISTRADOR"
	RoleSuperadmin = "SUPERADMINISTRADOR"

	// Audit entity kinds
	EntityBook = "LIBRO"
	EntityLoan = "PRESTAMO"
	EntityUser = "USUARIO"

	// Audit action kinds
	ActionCreate      = "CREACION"
	ActionUpdate      = "MODIFICACION"
	ActionDelete      = "ELIMINACION"
	ActionStateChange = "CAMBIO_ESTADO"
)

// LoanPeriodDays is the grace period granted on approval
const LoanPeriodDays = 15

// DeriveBookStatus returns the availability label for a copy count
func DeriveBookStatus(copies int) string {
	if copies > 0 {
		return BookStatusAvailable
	}
	return BookStatusUnavailable
}
