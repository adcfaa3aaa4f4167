package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type jwtCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the provided user. The tokenID is
// embedded as the jti claim and must match a live access_tokens row when the
// token is presented; deleting that row revokes the token.
func GenerateToken(secret string, userID, tokenID uuid.UUID, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded user and token IDs.
func ParseToken(secret, tokenString string) (userID, tokenID uuid.UUID, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return uuid.Nil, uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	if userID, err = uuid.Parse(claims.UserID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if tokenID, err = uuid.Parse(claims.ID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return userID, tokenID, nil
}
