// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

/*
Package constants provides centralized, immutable values for the entire service.

It defines default timeouts and cross-cutting keys that are shared between
different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Security: Token issuer and bcrypt work factor.
  - Transport: Shared header and JSON field identifiers.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "userbase-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Security

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "userbase"

	// BcryptCost is the adaptive work factor for password hashing.
	// 12 rounds keeps a single hash around 250ms on commodity hardware.
	BcryptCost = 12
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldMessage = "message"
	FieldToken   = "token"
	FieldUser    = "user"

	// StatusSuccess and StatusFailed are the only values the "status"
	// envelope field may take.
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
