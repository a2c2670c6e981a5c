package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the authenticated identity the auth middleware places in the
// request context. Token issuance happens outside this service.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the claims carry the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
