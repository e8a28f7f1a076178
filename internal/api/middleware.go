package api

import (
	"net/http"
	"strings"

	"storefront-api/internal/auth"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bearerPrefix = "bearer "

// authenticate resolves the bearer token into an identity; requests without
// a valid token stop here with 401
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := h.identities.Resolve(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// requireRole lets the request through only when the caller holds role
func (h *Handler) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := auth.FromContext(c.Request.Context())

		decision, err := auth.RequireRole(c.Request.Context(), h.roles, identity, role)
		if err != nil {
			h.logger.Error("Role lookup failed", zap.String("role", role), zap.Error(err))
		}
		if decision != auth.Authorized {
			respondError(c, service.ErrForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return header
}

// caller returns the identity set by authenticate
func caller(c *gin.Context) *auth.Identity {
	id, _ := auth.FromContext(c.Request.Context())
	return id
}

// pathID parses a UUID path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
