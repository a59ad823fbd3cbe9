package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RoleServiceRole is the role claim carried by tokens allowed to trigger sweeps.
const RoleServiceRole = "service_role"

// FunctionClaims are the claims of a token presented to the function endpoints.
type FunctionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ExtractTokenFromRequest extracts the bearer token from an HTTP request
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// ParseFunctionToken verifies an HS256 token signed with secret and checks its role.
func ParseFunctionToken(tokenString, secret string) (*FunctionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	claims := &FunctionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.Role != RoleServiceRole {
		return nil, fmt.Errorf("role %q may not trigger reminders", claims.Role)
	}
	return claims, nil
}
