package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. The access token is the bearer credential for every
// API call; the refresh token only mints new access tokens.
const (
	AccessTokenExpiry  = 30 * time.Minute
	RefreshTokenExpiry = 24 * time.Hour
)

// Token types embedded in the claims so a refresh token cannot be used
// as an access token or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the JWT claims. The token is self-contained: every claim a
// downstream handler needs (id, login identifier, role, display name)
// travels inside it, so no server-side session exists.
type Claims struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Principal is the request-scoped identity derived from validated access
// token claims. Handlers receive it instead of raw claims.
type Principal struct {
	ID       int64
	Username string
	Role     string
	Name     string
}

// Principal converts validated claims into a Principal value.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.AccountID, Username: c.Username, Role: c.Role, Name: c.Name}
}

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GenerateTokenPair creates an access and refresh token for an account.
func GenerateTokenPair(secret string, accountID int64, username, role, name string) (TokenPair, error) {
	access, err := generateToken(secret, accountID, username, role, name, TokenTypeAccess, AccessTokenExpiry)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generating access token: %w", err)
	}
	refresh, err := generateToken(secret, accountID, username, role, name, TokenTypeRefresh, RefreshTokenExpiry)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generating refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func generateToken(secret string, accountID int64, username, role, name, tokenType string, expiry time.Duration) (string, error) {
	claims := Claims{
		AccountID: accountID,
		Username:  username,
		Role:      role,
		Name:      name,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT of the expected type,
// returning the claims.
func ValidateToken(secret, tokenStr, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("expected %s token, got %s", tokenType, claims.TokenType)
	}

	return claims, nil
}
