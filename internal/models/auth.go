package models

import "github.com/golang-jwt/jwt/v5"

// TokenTypeAccess marks issued tokens in the claims payload.
const TokenTypeAccess = "access_token"

// RegisterRequest holds the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns the issued access token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// TokenClaims is the JWT payload: {id, email, name, iat, jti, type}.
type TokenClaims struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}
