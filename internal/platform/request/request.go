// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil extracts data from HTTP requests.

It wraps router parameter access and body decoding so handlers share one
error shape.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/ctxutil"
	"github.com/taibuivan/novelvault/internal/platform/sec"
	"github.com/taibuivan/novelvault/internal/platform/validate"
)

// MaxBodyBytes bounds JSON bodies. A whole uploaded novel fits comfortably.
const MaxBodyBytes = 32 << 20

/*
DecodeJSON reads the request body and decodes it into target.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	body := io.LimitReader(request.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter and checks that it is a UUID.

Returns:
  - string: The parameter value
  - error: apperr.ValidationError when the value is not a UUID
*/
func ID(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)

	validator := &validate.Validator{}
	validator.UUID(name, value)
	if err := validator.Err(); err != nil {
		return "", err
	}
	return value, nil
}

// Param retrieves a named URL parameter without validation.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredClaims returns the admin claims of the request.

Returns:
  - *sec.AuthClaims: The authenticated claims
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
