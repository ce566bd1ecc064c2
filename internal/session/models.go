package session

import "github.com/golang-jwt/jwt/v5"

// Identity is the user data a session token is issued for
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Claims is the payload of a session token
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
