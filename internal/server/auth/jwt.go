package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DmytroLysachenko/safe-vault/internal/common"
	"github.com/DmytroLysachenko/safe-vault/internal/server/models"
)

// Claims is the claim set carried by access tokens: the registered claims
// plus the identity and role facts authorization decisions are made from.
// Tokens are the sole source of truth after issuance; role changes do not
// affect tokens already minted.
type Claims struct {
	jwt.RegisteredClaims
	Username  string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasRole reports whether the token carries the given role,
// compared case-insensitively.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// TokenIssuer mints and validates HS256-signed access tokens. Issuance and
// validation share the same issuer, audience, and key, so both sides agree
// by construction.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	validity time.Duration
}

// NewTokenIssuer constructs a TokenIssuer. An empty signing key is a
// configuration error: the issuer refuses to initialize rather than mint
// forgeable tokens.
func NewTokenIssuer(secretKey, issuer, audience string, validity time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("jwt signing key is not configured")
	}

	return &TokenIssuer{
		secret:   []byte(secretKey),
		issuer:   issuer,
		audience: audience,
		validity: validity,
	}, nil
}

// Issue mints a signed token for user carrying the given roles. Blank role
// strings are skipped. The returned expiry is now plus the configured
// lifetime.
func (i *TokenIssuer) Issue(user models.User, roles []string) (string, time.Time, error) {
	kept := make([]string, 0, len(roles))
	for _, r := range roles {
		if strings.TrimSpace(r) != "" {
			kept = append(kept, r)
		}
	}

	now := time.Now()
	expiresAt := now.Add(i.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:  user.Username,
		Email:     user.Email,
		Roles:     kept,
		CreatedAt: user.CreatedAt.UTC(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Parse validates tokenString (signature, signing method, issuer, audience,
// expiry) and returns its claims. Expired tokens yield common.ErrTokenExpired;
// every other failure collapses to common.ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
