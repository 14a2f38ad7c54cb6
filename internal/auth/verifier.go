package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"party-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier resolves a bearer token to the identity minted by the identity
// provider.
type Verifier interface {
	Verify(token string) (models.Identity, error)
}

// JWTVerifier validates HMAC-signed identity tokens carrying uid, name and
// photo claims.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier constructs the verifier.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and extracts the caller identity.
func (v *JWTVerifier) Verify(token string) (models.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Identity{}, ErrInvalidToken
	}

	uid, _ := claims["sub"].(string)
	if uid == "" {
		return models.Identity{}, ErrInvalidToken
	}
	name, _ := claims["name"].(string)
	photo, _ := claims["photo"].(string)

	return models.Identity{UID: uid, Name: name, Photo: photo}, nil
}
