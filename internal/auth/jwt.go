// Package auth issues and verifies the signed session tokens handed out at
// sign-in.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
)

// Claims carries the session user next to the standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
	models.SessionUser
}

// IssueToken signs a session token for user that expires after ttl.
func IssueToken(user models.SessionUser, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		SessionUser: user,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies tokenString and returns the session user it carries.
// Any verification failure is reported as common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (models.SessionUser, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.SessionUser{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.SessionUser.ID == "" {
		return models.SessionUser{}, common.ErrInvalidToken
	}

	return claims.SessionUser, nil
}
