package auth

import (
	"context"
	"errors"
	"log"

	"github.com/golang-jwt/jwt/v5"

	"realty-chat-service/internal/models"
)

// UserLookup resolves a user id to an account record.
type UserLookup interface {
	GetUser(ctx context.Context, userID int) (models.User, error)
}

// Claims are the JWT claims issued by the account service.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Validator verifies bearer tokens and resolves them to identities.
type Validator struct {
	secret []byte
	users  UserLookup
}

// NewValidator constructs a Validator.
func NewValidator(secret []byte, users UserLookup) *Validator {
	return &Validator{secret: secret, users: users}
}

// ValidateToken verifies the token signature and claims and returns the
// user id it was issued for.
func (v *Validator) ValidateToken(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return claims.UserID, nil
}

// Resolve turns a raw bearer token into an Identity. Every failure mode
// (malformed token, expired token, bad signature, unknown or inactive user)
// yields Anonymous; the reason is only logged.
func (v *Validator) Resolve(ctx context.Context, tokenString string) Identity {
	if tokenString == "" {
		return Anonymous()
	}

	userID, err := v.ValidateToken(tokenString)
	if err != nil {
		log.Printf("token validation failed: %v", err)
		return Anonymous()
	}

	user, err := v.users.GetUser(ctx, userID)
	if err != nil {
		log.Printf("token user lookup failed for user %d: %v", userID, err)
		return Anonymous()
	}
	if !user.IsActive {
		log.Printf("token user %d is inactive", userID)
		return Anonymous()
	}

	return Authenticated(user.ID, user.FullName)
}
