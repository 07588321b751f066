// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/dberr"
	"github.com/thachln/userbase/internal/platform/mailer"
	"github.com/thachln/userbase/internal/platform/sec"
)

// # Contracts & Types

// SessionTokenProvider defines the contract for issuing session bearer tokens.
type SessionTokenProvider interface {
	// Issue creates a signed, expiring token encoding the account id.
	Issue(accountID string) (string, error)
}

// ResetTokenProvider defines the contract for the password-reset token scheme.
//
// The implementation signs with a secret derived from the server secret and
// the target account id, so a token is scoped to exactly one account without
// any server-side token state.
type ResetTokenProvider interface {
	Issue(accountID string) (string, error)
	Verify(token, accountID string) error
}

// Service orchestrates the account flows: register, login, change-password,
// request-reset, and confirm-reset.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	accounts      Repository
	mail          mailer.Mailer
	sessionTokens SessionTokenProvider
	resetTokens   ResetTokenProvider
	frontendHost  string
}

// NewService constructs a new [Service] with necessary dependencies.
//
// frontendHost is the base URL embedded in password reset links.
func NewService(
	accounts Repository,
	mail mailer.Mailer,
	sessionTokens SessionTokenProvider,
	resetTokens ResetTokenProvider,
	frontendHost string,
) *Service {
	return &Service{
		accounts:      accounts,
		mail:          mail,
		sessionTokens: sessionTokens,
		resetTokens:   resetTokens,
		frontendHost:  frontendHost,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

/*
Register validates, hashes, and persists a brand new account, then issues a
session token for it.

Description: The gates run in order — email-taken first, then password
confirmation — each a potential early exit. The taken-email pre-check gives a
friendly fast path; the database unique constraint remains the authority, so
a concurrent duplicate that slips past the pre-check still surfaces as the
same duplicate error, not a 500.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - string: Signed session token for the new account
  - error: Duplicate, validation, or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (string, error) {

	// Identity fields are stored trimmed; "a@x.com " and "a@x.com" are the
	// same address.
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	// Reject an already-registered email with a client-safe error.
	if _, err := service.accounts.FindByEmail(ctx, input.Email); err == nil {
		return "", apperr.Duplicate("Email already exists, kindly try another email")
	}

	if input.Password != input.PasswordConfirmation {
		return "", apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPasswordConfirmation,
			Message: "Passwords do not match",
		})
	}

	// Never store plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return "", fmt.Errorf("account_service_hash_failed: %w", err)
	}

	acct := &Account{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	// The store generates the opaque id and enforces name/email uniqueness.
	if err := service.accounts.Create(ctx, acct); err != nil {
		if apperr.IsAppError(err) {
			return "", err
		}
		return "", fmt.Errorf("account_service_register_failed: %w", err)
	}

	token, err := service.sessionTokens.Issue(acct.ID)
	if err != nil {
		return "", fmt.Errorf("account_service_token_issue_failed: %w", err)
	}

	return token, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates credentials and issues a session token.

Description: A missing account and a wrong password produce the exact same
401 response, so callers cannot enumerate registered emails.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - string: Signed session token
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (string, error) {
	acct, err := service.accounts.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		return "", apperr.Unauthorized("Invalid credentials")
	}

	// bcrypt compares in constant time relative to the hash structure.
	if !sec.CheckPasswordHash(input.Password, acct.PasswordHash) {
		return "", apperr.Unauthorized("Invalid credentials")
	}

	token, err := service.sessionTokens.Issue(acct.ID)
	if err != nil {
		return "", fmt.Errorf("account_service_token_issue_failed: %w", err)
	}

	return token, nil
}

// # Password Management

/*
ChangePassword replaces the authenticated account's password.

Description: Field presence is validated at the transport layer; the service
re-checks the confirmation gate, hashes, and persists.

Parameters:
  - ctx: context.Context
  - accountID: string (the authenticated account)
  - password: string
  - passwordConfirmation: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) ChangePassword(ctx context.Context, accountID, password, passwordConfirmation string) error {
	if password != passwordConfirmation {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPasswordConfirmation,
			Message: "Passwords do not match",
		})
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("account_service_change_password_update_failed: %w", err)
	}

	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Looks up the account, issues a short-lived reset token signed
with that account's derived secret, and emails a reset link embedding the
account id and token. Nothing is persisted: the token itself is the whole
authorization state.

A transport failure IS surfaced to the caller as a 500 — silently claiming
success while the email never left would strand the user.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: 400 if the email is unknown, 500 on token or transport failures
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := service.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.ValidationError("Email doesn't exist")
		}
		return fmt.Errorf("account_service_reset_lookup_failed: %w", err)
	}

	token, err := service.resetTokens.Issue(acct.ID)
	if err != nil {
		return fmt.Errorf("account_service_reset_token_issue_failed: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s/%s", service.frontendHost, acct.ID, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nClick the link below to reset your password. The link expires shortly.\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
		acct.Name, link,
	)

	if err := service.mail.Send(ctx, acct.Email, "Reset your password", body); err != nil {
		return apperr.Internal(fmt.Errorf("account_service_reset_email_failed: %w", err))
	}

	return nil
}

/*
ConfirmPasswordReset completes the forgot-password flow.

Description: The account is fetched by the path-carried id BEFORE the token's
derived secret is recomputed — an id that resolves to nothing fails here
without ever touching the signature check. Invalid, expired, and
wrong-account tokens all produce the same 400.

Parameters:
  - ctx: context.Context
  - accountID: string (from the reset link path)
  - token: string (from the reset link path)
  - password: string
  - passwordConfirmation: string

Returns:
  - error: Token, validation, or persistence failures
*/
func (service *Service) ConfirmPasswordReset(ctx context.Context, accountID, token, password, passwordConfirmation string) error {
	acct, err := service.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// Uniform with token failures: the link as a whole is invalid.
			return apperr.InvalidToken("Invalid or expired reset link")
		}
		return fmt.Errorf("account_service_reset_confirm_lookup_failed: %w", err)
	}

	if err := service.resetTokens.Verify(token, acct.ID); err != nil {
		return apperr.InvalidToken("Invalid or expired reset link")
	}

	if password != passwordConfirmation {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPasswordConfirmation,
			Message: "Passwords do not match",
		})
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("account_service_reset_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(ctx, acct.ID, hashedPassword); err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("account_service_reset_update_failed: %w", err)
	}

	return nil
}

// # Identity Resolution

/*
ResolveAccount loads the account behind a verified session token id for the
auth middleware, mapped to the password-free [sec.AuthUser] view.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - *sec.AuthUser: The account with the password excluded
  - error: Lookup failures (the middleware maps any error to 401)
*/
func (service *Service) ResolveAccount(ctx context.Context, accountID string) (*sec.AuthUser, error) {
	acct, err := service.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &sec.AuthUser{
		ID:        acct.ID,
		Name:      acct.Name,
		Email:     acct.Email,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}, nil
}
