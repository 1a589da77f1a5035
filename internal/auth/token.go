package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HS256 bearer tokens issued by the platform's REST
// auth routes and extracts the subject user id.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates tokenString, returning the subject claim.
// Expiry and signature are checked by the parser; any failure is reported as
// a single opaque error so callers cannot distinguish forged from expired.
func (v *JWTVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}
	return subject, nil
}

// Sign issues a token for userID, used by tests and the local dev seed.
func (v *JWTVerifier) Sign(userID string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims["sub"] = userID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
