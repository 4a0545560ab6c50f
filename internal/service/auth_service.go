package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuserp/attendance-api/internal/models"
	"github.com/campuserp/attendance-api/pkg/config"
	appErrors "github.com/campuserp/attendance-api/pkg/errors"
)

// AuthService validates access tokens issued by the external auth service.
// Issuance and refresh live outside this service; only verification happens
// here, so the rest of the code can trust the identity on the request.
type AuthService struct {
	secret []byte
}

// NewAuthService constructs the validator from the shared JWT secret.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{secret: []byte(cfg.Secret)}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
