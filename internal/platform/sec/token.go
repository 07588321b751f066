// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small interfaces defined at the point of use.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thachln/userbase/internal/platform/constants"
)

// ErrInvalidToken is the uniform failure for every token verification problem:
// bad signature, malformed structure, wrong signing method, or expiry.
//
// # Why uniform?
//
// Distinguishing "expired" from "tampered" would hand an attacker probing
// tokens a validity oracle. Callers translate this single error into the
// appropriate transport response.
var ErrInvalidToken = errors.New("sec: invalid or expired token")

// AuthUser is the authenticated account attached to a request context.
//
// It deliberately excludes the password hash: the auth middleware builds it
// from a fresh repository fetch, so handlers always see current account data
// rather than stale token-embedded fields.
type AuthUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Session Tokens

// SessionTokens issues and verifies stateless HS256 bearer tokens.
//
// A session token encodes only the account id (minimal claim set); handlers
// re-fetch the account on every authenticated request. Nothing is persisted:
// validity is proven solely by signature and expiry against the single
// server-wide secret.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokens creates a session token service.
//
// # Parameters
//   - secret: The server-wide signing secret, loaded once at startup.
//   - ttl: How long an issued token remains valid (default 5 days).
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token identifying the given account.
func (s *SessionTokens) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    constants.AuthIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks signature and expiry and returns the account id claim.
//
// Every failure mode surfaces as [ErrInvalidToken].
func (s *SessionTokens) Verify(tokenString string) (string, error) {
	claims, err := parseHS256(tokenString, s.secret)
	if err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// # Password Reset Tokens

// ResetTokens issues and verifies short-lived password reset tokens.
//
// # Derived Secret
//
// A reset token is signed with serverSecret + accountID (string
// concatenation), giving each account an effectively distinct signing
// context. Nothing is persisted and no revocation table exists: possession
// of a structurally valid, correctly-signed, unexpired token is the sole
// proof of authorization. The trade-off is that a specific token cannot be
// revoked early except by rotating the server secret (global effect).
type ResetTokens struct {
	serverSecret string
	ttl          time.Duration
}

// NewResetTokens creates a reset token service.
//
// # Parameters
//   - serverSecret: The server-wide secret, combined per-account at signing time.
//   - ttl: How long an issued token remains valid (default 15 minutes).
func NewResetTokens(serverSecret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{serverSecret: serverSecret, ttl: ttl}
}

// Issue produces a reset token bound to the given account's derived secret.
func (r *ResetTokens) Issue(accountID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    constants.AuthIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(r.derivedSecret(accountID))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign reset token: %w", err)
	}

	return signedToken, nil
}

// Verify recomputes the derived secret for accountID and checks the token
// against it. A token issued for any other account fails here even when it is
// otherwise well-formed and unexpired.
//
// Every failure mode surfaces as [ErrInvalidToken].
func (r *ResetTokens) Verify(tokenString, accountID string) error {
	if _, err := parseHS256(tokenString, r.derivedSecret(accountID)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// derivedSecret scopes the server-wide secret to one account.
func (r *ResetTokens) derivedSecret(accountID string) []byte {
	return []byte(r.serverSecret + accountID)
}

// # Shared Parsing

// parseHS256 parses and validates a token, rejecting any signing method other
// than HMAC-SHA256. Algorithm confusion (e.g. "none" or an RSA downgrade) is
// treated the same as a bad signature.
func parseHS256(tokenString string, secret []byte) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}
