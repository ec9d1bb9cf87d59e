// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth signs in the archive's single administrator.

The account is not stored in the database: the username and a bcrypt hash of
the password come from configuration, and a successful login returns an RS256
access token accepted by [middleware.Authenticate].
*/
package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/constants"
	"github.com/taibuivan/novelvault/internal/platform/sec"
	"github.com/taibuivan/novelvault/internal/platform/validate"
)

const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// TokenIssuer signs access tokens. [sec.TokenService] implements it.
type TokenIssuer interface {
	GenerateAccessToken(username, role string, timeToLive time.Duration) (string, error)
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginSession is returned after a successful login.
type LoginSession struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// # Service Layer

// Service verifies the admin credentials.
type Service struct {
	username     string
	passwordHash string
	tokens       TokenIssuer
	logger       *slog.Logger
}

/*
NewService constructs the auth [Service].

Parameters:
  - username: string (Admin username)
  - passwordHash: string (bcrypt hash of the admin password)
  - tokens: TokenIssuer
  - logger: *slog.Logger
*/
func NewService(username, passwordHash string, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		username:     username,
		passwordHash: passwordHash,
		tokens:       tokens,
		logger:       logger,
	}
}

/*
Login checks the credentials and issues an admin access token.

Description: The password hash is always compared, even for an unknown
username, so both failures take the same time.

Returns:
  - *LoginSession: Bearer token and expiry
  - error: Validation errors, apperr.Unauthorized for bad credentials
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	usernameMatches := subtle.ConstantTimeCompare([]byte(input.Username), []byte(service.username)) == 1
	passwordMatches := sec.CheckPasswordHash(input.Password, service.passwordHash)
	if !usernameMatches || !passwordMatches {
		service.logger.WarnContext(context, "admin_login_failed", slog.String("username", input.Username))
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	expiresAt := time.Now().Add(constants.AccessTokenTTL).UTC()
	token, err := service.tokens.GenerateAccessToken(service.username, constants.AdminRole, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	service.logger.InfoContext(context, "admin_logged_in", slog.String("username", service.username))

	return &LoginSession{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}
