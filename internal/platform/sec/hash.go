// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/thachln/userbase/internal/platform/constants"
)

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The output is self-describing: the random salt and the cost factor are
// embedded in the hash, so verification never needs them passed separately.
// Safe for concurrent use.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), constants.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
//
// A mismatch is an ordinary false result, never an error. bcrypt performs the
// comparison in constant time relative to the hash structure, so callers leak
// no timing difference between a wrong password and a malformed stored hash.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
