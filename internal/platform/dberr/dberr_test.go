// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/dberr"
)

/*
TestWrap verifies the driver-error classification the repositories rely on.
*/
func TestWrap(t *testing.T) {
	t.Run("nil_passthrough", func(t *testing.T) {
		assert.NoError(t, dberr.Wrap(nil))
	})

	t.Run("no_rows_maps_to_not_found", func(t *testing.T) {
		err := dberr.Wrap(fmt.Errorf("query: %w", pgx.ErrNoRows))
		assert.ErrorIs(t, err, dberr.ErrNotFound)
	})

	t.Run("unique_violation_maps_to_duplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		err := dberr.Wrap(pgErr)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "DUPLICATE_KEY", ae.Code)
	})

	t.Run("unknown_maps_to_internal", func(t *testing.T) {
		err := dberr.Wrap(errors.New("connection reset"))

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INTERNAL_ERROR", ae.Code)
		assert.Equal(t, 500, ae.HTTPStatus)
	})
}

/*
TestConstraintName verifies the constraint dispatch used for duplicate
name/email messages.
*/
func TestConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "accounts_email_key",
	}

	assert.True(t, dberr.IsUniqueViolation(pgErr))
	assert.Equal(t, "accounts_email_key", dberr.ConstraintName(pgErr))

	other := errors.New("not a pg error")
	assert.False(t, dberr.IsUniqueViolation(other))
	assert.Empty(t, dberr.ConstraintName(other))
}
