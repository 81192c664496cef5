package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HubertasVin/pos-1206-sub000/pkg/middleware"
)

// Claims represents the JWT claims carried by a staff access token.
type Claims struct {
	UserID     string `json:"user_id"`
	MerchantID string `json:"merchant_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates staff access tokens issued by the identity service.
// This service never issues tokens; it only verifies them.
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator with the shared HMAC secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// Validate parses and validates an access token, returning the claims in the
// shape the auth middleware expects.
func (v *JWTValidator) Validate(tokenString string) (*middleware.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.UserID == "" || claims.MerchantID == "" {
		return nil, fmt.Errorf("access token missing user or merchant scope")
	}

	return &middleware.Claims{
		UserID:     claims.UserID,
		MerchantID: claims.MerchantID,
		Role:       claims.Role,
	}, nil
}
