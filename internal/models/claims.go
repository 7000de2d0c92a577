package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Role grants access beyond the student's own data.
type Role string

// RoleAdmin may manage the shared course catalog.
const RoleAdmin Role = "admin"

// JWTClaims is the access token payload issued by the identity provider.
type JWTClaims struct {
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
	Grade      int    `json:"grade,omitempty"`
	Roles      []Role `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token carries role.
func (c *JWTClaims) HasRole(role Role) bool {
	return c != nil && slices.Contains(c.Roles, role)
}
