package model

import "time"

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AuthUser is the identity resolved from a verified session token.
type AuthUser struct {
	ID int64
}

type User struct {
	ID             int64
	Username       string
	PasswordDigest string
	CreatedAt      time.Time
}
