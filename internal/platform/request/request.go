// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and the common body decoding
patterns so every handler reports malformed input the same way.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/ctxutil"
	"github.com/taibuivan/readtrack/internal/platform/sec"
	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/dateutil"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Unknown fields are rejected so a typo in a PATCH body is not silently ignored.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
QueryBool parses an optional boolean query parameter.

Returns nil when the parameter is absent.
*/
func QueryBool(request *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(request.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.FieldInvalid(name, "Must be true or false")
	}
	return &value, nil
}

/*
QueryDate parses an optional ISO-8601 calendar date (YYYY-MM-DD) query parameter.

Returns nil when the parameter is absent.
*/
func QueryDate(request *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(request.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	value, err := dateutil.Parse(raw)
	if err != nil {
		return nil, apperr.FieldInvalid(name, "Must be a date in YYYY-MM-DD format")
	}
	return &value, nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
