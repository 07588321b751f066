// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/constants"
	"github.com/thachln/userbase/internal/platform/ctxutil"
	"github.com/thachln/userbase/internal/platform/respond"
	"github.com/thachln/userbase/internal/platform/sec"
)

// SessionVerifier defines the interface needed to verify session tokens.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the concrete
// token service, allowing mocks to be injected during unit testing.
type SessionVerifier interface {
	// Verify checks the token's signature and expiry uniformly and returns
	// the account id claim.
	Verify(token string) (string, error)
}

// AccountResolver loads the account behind a verified session token.
//
// The session token carries the account id only; the middleware re-fetches
// fresh account data on every authenticated request rather than trusting
// stale embedded fields.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, accountID string) (*sec.AuthUser, error)
}

// RequireAuth guards a route group with bearer-token authentication.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>'. If absent or malformed,
//     short-circuit with 401 "No token provided".
//  2. Verify the token via [SessionVerifier]. Expired and tampered tokens
//     fail identically with 401 "Invalid token".
//  3. Resolve the account by its id claim. A token whose account no longer
//     exists fails the same way as a bad token.
//  4. Attach the account (password excluded) to the request context.
func RequireAuth(verifier SessionVerifier, resolver AccountResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Header Presence & Format ───────────────────────────────────
			// Fields tolerates extra whitespace between scheme and token.
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				respond.Error(writer, request, apperr.Unauthorized("No token provided"))
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			accountID, err := verifier.Verify(parts[1])
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 3. Account Resolution ─────────────────────────────────────────
			user, err := resolver.ResolveAccount(request.Context(), accountID)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
