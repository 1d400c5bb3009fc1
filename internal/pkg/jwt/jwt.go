package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

var ErrInvalidClaims = errors.New("invalid token claims")

// Identity is the caller resolved from a verified access token.
type Identity struct {
	UserID     string
	EmployeeID string
	Name       string
	Role       Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Service interface {
	GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     identity.UserID,
		"employee_id": identity.EmployeeID,
		"name":        identity.Name,
		"role":        string(identity.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims reads an access token's claims. user_id is mandatory; a missing role means employee.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return Identity{}, ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrInvalidClaims
	}

	identity := Identity{UserID: userID, Role: RoleEmployee}
	if employeeID, ok := claims["employee_id"].(string); ok {
		identity.EmployeeID = employeeID
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if role, ok := claims["role"].(string); ok && Role(role) == RoleAdmin {
		identity.Role = RoleAdmin
	}
	return identity, nil
}

// IdentityFromContext resolves the identity verified by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	return IdentityFromClaims(claims)
}
