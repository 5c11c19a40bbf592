// Package auth issues and verifies the signed principal tokens handed to
// the session layer.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the resolved principal. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Principal access.Principal `json:"principal"`
}

func GeneratePrincipalToken(pr access.Principal, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(pr.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Principal: pr,
	})
	return token.SignedString(secretKey)
}

// PrincipalFromToken verifies the token and returns its principal. Any
// failure, expiry included, is reported as common.ErrInvalidToken.
func PrincipalFromToken(tokenString string, secretKey []byte) (*access.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject != strconv.FormatInt(claims.Principal.UserID, 10) {
		return nil, fmt.Errorf("%w: subject mismatch", common.ErrInvalidToken)
	}
	return &claims.Principal, nil
}
