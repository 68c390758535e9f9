// Package auth authenticates requests and scopes them to an organization.
//
// Authentication is delegated to an external identity provider that issues
// HMAC signed JWTs. The backend only verifies the signature and turns the
// claims into a request scoped Identity, it does not implement login or
// signup flows.
package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// identityKey is the gin context key the Identity is stored under.
const identityKey = "fleetdeck-identity"

var (
	ErrNoToken        = errors.New("no bearer token was provided")
	ErrInvalidToken   = errors.New("the bearer token is invalid")
	ErrNoOrganization = errors.New("the token does not reference an organization")
	ErrForbidden      = errors.New("you do not have the permission to perform this action")
)

// Identity is the authenticated caller of a request.
//
// It is resolved once per request and passed explicitly through the gin
// context, so handlers and the business logic below them are pure functions
// of their inputs instead of reading ambient session state.
type Identity struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
	Permissions    permissions.Set
}

// IsSuperAdmin reports whether the identity carries the super-admin role.
func (i Identity) IsSuperAdmin() bool {
	return i.Role == permissions.SuperAdmin
}

// Claims are the JWT claims the backend consumes.
type Claims struct {
	jwt.RegisteredClaims
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role"`
}

// Middleware parses the bearer token and stores the resolved Identity in
// the gin context. Requests without a valid token are rejected.
func Middleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(db, c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// Require gates a route group behind a permission. Super admins pass every
// gate.
func Require(permission permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFromContext(c)

		if !identity.IsSuperAdmin() && !identity.Permissions.Has(permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
			return
		}

		c.Next()
	}
}

// IdentityFromContext returns the Identity stored by Middleware. It returns
// the zero Identity when called outside an authenticated request, which
// carries no permissions and therefore fails closed.
func IdentityFromContext(c *gin.Context) Identity {
	value, ok := c.Get(identityKey)
	if !ok {
		return Identity{}
	}

	identity, ok := value.(Identity)
	if !ok {
		return Identity{}
	}

	return identity
}

func identityFromRequest(db *gorm.DB, r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, ErrNoToken
	}

	claims := Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	organizationID, err := uuid.Parse(claims.OrganizationID)
	if err != nil && claims.Role != permissions.SuperAdmin {
		return Identity{}, ErrNoOrganization
	}

	return Identity{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           claims.Role,
		Permissions:    permissions.Resolve(db, organizationID, claims.Role),
	}, nil
}
