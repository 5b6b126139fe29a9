package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a dashboard session token. UID is the panel user
// id that scopes every mirror, credential, and history query.
type Claims struct {
	UID      int    `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ErrNotInitialized is returned when token operations run before
// InitJWT has installed the signing key.
var ErrNotInitialized = errors.New("jwt signing key not initialized")

var signingKey []byte

// InitJWT installs the HS256 signing key for session tokens
func InitJWT(secret string) {
	signingKey = []byte(secret)
}

// GenerateToken issues a session token for a panel user
func GenerateToken(uid int, username, role string, expireAt time.Time, issuer string) (string, error) {
	if len(signingKey) == 0 {
		return "", ErrNotInitialized
	}

	claims := Claims{
		UID:      uid,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expireAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// ParseToken validates a session token and returns its claims. Only
// HS256 is accepted; tokens signed with any other method are rejected
// before the key is consulted.
func ParseToken(tokenString string) (*Claims, error) {
	if len(signingKey) == 0 {
		return nil, ErrNotInitialized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
