package utils

import (
	"time"

	"carepay/internal/config"
	"carepay/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken signs a JWT for the given user, valid for 24 hours.
func GenerateToken(user *models.User) (string, error) {
	claims := &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetEnv("JWT_SECRET", "dev-secret")))
}
