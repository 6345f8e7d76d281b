// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated operator's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access operator information without depending on Gin.
type Identity interface {
	// OperatorID returns the authenticated operator's ID.
	OperatorID() uuid.UUID
	// Email returns the operator's email, if present in the token.
	Email() string
	// Roles returns the operator's assigned roles.
	Roles() []string
	// HasRole checks if the operator has a specific role.
	HasRole(role string) bool
	// IsAuthenticated returns true if the operator is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	operatorID    uuid.UUID
	email         string
	roles         []string
	authenticated bool
}

func (i *identity) OperatorID() uuid.UUID {
	return i.operatorID
}

func (i *identity) Email() string {
	return i.email
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if operator info is not present.
func GetIdentity(c *gin.Context) Identity {
	operatorID, operatorOK := c.Get(ContextOperatorIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !operatorOK {
		return &identity{authenticated: false}
	}

	oid, ok := operatorID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var roleList []string
	if rolesOK {
		roleList, _ = roles.([]string)
	}

	return &identity{
		operatorID:    oid,
		email:         c.GetString(ContextEmailKey),
		roles:         roleList,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the operator is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
