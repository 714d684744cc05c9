// Package auth verifies bearer credentials and carries the resulting
// identity through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

var (
	// ErrNoToken means the request carried no bearer credential.
	ErrNoToken = fmt.Errorf("%w: no token", models.ErrUnauthenticated)
	// ErrInvalidToken means the credential was present but not acceptable.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", models.ErrUnauthenticated)
)

// UserLookup loads accounts by id.
type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens and loads the account they name.
type Verifier struct {
	secret []byte
	users  UserLookup
	parser *jwt.Parser
}

// NewVerifier returns a verifier for tokens signed with secret.
func NewVerifier(secret string, users UserLookup) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		users:  users,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Issue signs a token for userID valid for ttl.
func (v *Verifier) Issue(userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Authenticate resolves an Authorization header value to an active identity.
func (v *Verifier) Authenticate(ctx context.Context, header string) (models.Identity, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return models.Identity{}, ErrNoToken
	}

	var claims Claims
	_, err := v.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	user, err := v.users.FindByID(ctx, id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !user.IsActive {
		return models.Identity{}, fmt.Errorf("%w: account inactive", ErrInvalidToken)
	}
	return user.Identity(), nil
}

// IsMissing reports whether err is the absent-credential case.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNoToken)
}
