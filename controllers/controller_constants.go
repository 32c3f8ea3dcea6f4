package controllers

import (
	"biblioteca/database"
)

// User role constants
const (
	RoleClient     = database.RoleClient
	RoleAdmin      = database.RoleAdmin
	RoleSuperadmin = database.RoleSuperadmin
)

// Loan status constants
const (
	LoanStatusPending  = database.LoanStatusPending
	LoanStatusApproved = database.LoanStatusApproved
	LoanStatusRejected = database.LoanStatusRejected
	LoanStatusReturned = database.LoanStatusReturned
	LoanStatusExpired  = database.LoanStatusExpired
)

// Book status constants
const (
	BookStatusAvailable   = database.BookStatusAvailable
	BookStatusUnavailable = database.BookStatusUnavailable
)
