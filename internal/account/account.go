// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

/*
Package account implements user-account identity management.

It defines the core domain entity (Account) and the flows for registration,
login, password change, and password reset by email.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
transport dependencies and encapsulates all business rules related to
account identity: name and email are unique across all accounts at all
times, and the password exists only as a salted bcrypt hash.
*/
package account

import "time"

// # Domain Entities

// Account represents a registered user.
//
// The record is created on registration; only the password hash mutates
// afterwards (change-password and reset-confirmation). Accounts are never
// hard-deleted by this core.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Field names for validation and identity mapping in the account domain.
const (
	FieldName                 = "name"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "password_confirmation"
	FieldID                   = "id"
	FieldToken                = "token"
)

// # Validation Constraints

const (
	// NameMinLen is the minimum account name length.
	NameMinLen = 3

	// NameMaxLen is the maximum account name length.
	NameMaxLen = 20

	// PasswordMinLen is the minimum password length.
	PasswordMinLen = 6
)
