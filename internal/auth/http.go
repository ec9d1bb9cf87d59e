// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/novelvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/novelvault/internal/platform/request"
	"github.com/taibuivan/novelvault/internal/platform/respond"
)

// Handler implements the authentication endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches POST /auth/login and GET /auth/me.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Post("/auth/login", handler.Login)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth)
		admin.Get("/auth/me", handler.Me)
	})
}

/*
POST /api/v1/auth/login.

Response:
  - 200: LoginSession
  - 400: Missing username or password
  - 401: Invalid credentials
*/
func (handler *Handler) Login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// GET /api/v1/auth/me returns the claims of the current token.
func (handler *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"username": claims.Username,
		"role":     claims.Role,
	})
}
