// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/ctxutil"
	"github.com/thachln/userbase/internal/platform/sec"
	"github.com/thachln/userbase/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredAuthUser ensures the request is authenticated and returns the account.

Returns:
  - *sec.AuthUser: The authenticated account (password excluded)
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredAuthUser(request *http.Request) (*sec.AuthUser, error) {
	user := ctxutil.GetAuthUser(request.Context())
	if user == nil {
		return nil, apperr.Unauthorized("No token provided")
	}
	return user, nil
}
