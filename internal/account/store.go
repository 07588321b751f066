// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package account

import "context"

// # Account Data Access

// Repository defines the data access contract for user accounts.
//
// Uniqueness on name and email is enforced by the underlying store as a hard
// constraint, not an application-level pre-check: a check-then-insert race
// between two concurrent registrations with the same email must not both
// succeed. Create surfaces that condition as a distinct duplicate-key error.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - ctx: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(ctx context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmail(ctx context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new account. The store generates the opaque id
		and writes it back onto the entity.

		Parameters:
		  - ctx: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Duplicate on a name/email unique violation,
		    other persistence failures otherwise
	*/
	Create(ctx context.Context, account *Account) error

	/*
		UpdatePassword replaces only the account's password hash.

		Parameters:
		  - ctx: context.Context
		  - accountID: string
		  - newHash: string

		Returns:
		  - error: dberr.ErrNotFound if no row matched, persistence failures otherwise
	*/
	UpdatePassword(ctx context.Context, accountID, newHash string) error
}
