package v1

import (
	"net/http"

	"github.com/fleetdeck/backend/internal/auth"
	"github.com/fleetdeck/backend/internal/httputil"
	"github.com/fleetdeck/backend/internal/permissions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterIdentityRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsIdentity)
	r.GET("", GetIdentity)
}

type Identity struct {
	UserID         uuid.UUID                `json:"userId" example:"6f304bea-8bba-4b71-8ea0-4cfa4a9452d6"`         // ID of the authenticated user
	OrganizationID uuid.UUID                `json:"organizationId" example:"c4f8b25c-087a-4a22-a217-3b2f0371ff14"` // The organization the request is scoped to
	Role           string                   `json:"role" example:"manager"`                                        // Role claim of the token
	Permissions    []permissions.Permission `json:"permissions" example:"trips:read,trips:write"`                  // Permissions the role resolves to, sorted
}

type IdentityResponse struct {
	Data Identity `json:"data"` // The resource
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Identity
// @Success		204
// @Router			/v1/identity [options]
func OptionsIdentity(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get identity
// @Description	Returns the authenticated caller with the permissions their role resolves to
// @Tags			Identity
// @Produce		json
// @Success		200	{object}	IdentityResponse
// @Router			/v1/identity [get]
func GetIdentity(c *gin.Context) {
	identity := auth.IdentityFromContext(c)

	c.JSON(http.StatusOK, IdentityResponse{
		Data: Identity{
			UserID:         identity.UserID,
			OrganizationID: identity.OrganizationID,
			Role:           identity.Role,
			Permissions:    identity.Permissions.Slice(),
		},
	})
}
