package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult bundles the authenticated user and the issued token.
type LoginResult struct {
	User  *User
	Token string
}

// ChangePasswordRequest payload for updating the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
