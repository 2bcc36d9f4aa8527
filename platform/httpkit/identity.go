package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is what handlers see of the authenticated caller. It hides the
// gin context keys so handler code never touches them directly.
type Identity interface {
	UserID() uuid.UUID
	// OrgID is the tenant the token is scoped to, uuid.Nil when the token
	// carries no organization claim.
	OrgID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	orgID         uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID    { return i.userID }
func (i *identity) OrgID() uuid.UUID     { return i.orgID }
func (i *identity) Roles() []string      { return i.roles }
func (i *identity) IsAuthenticated() bool { return i.authenticated }

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetIdentity reads the caller set by AuthRequired. Requests that never
// passed the middleware come back unauthenticated.
func GetIdentity(c *gin.Context) Identity {
	rawUser, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	userID, ok := rawUser.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roles []string
	if raw, ok := c.Get(ContextRolesKey); ok {
		roles, _ = raw.([]string)
	}

	var orgID uuid.UUID
	if raw, ok := c.Get(ContextTenantIDKey); ok {
		orgID, _ = raw.(uuid.UUID)
	}

	return &identity{userID: userID, orgID: orgID, roles: roles, authenticated: true}
}

// MustGetIdentity aborts with 401 and returns nil when the request is not
// authenticated; callers must return immediately on nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
