package api

import (
	"net/http"

	"storefront-api/internal/models"

	"github.com/gin-gonic/gin"
)

type profilePatchRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type rolesRequest struct {
	Roles []string `json:"roles" binding:"required,dive,oneof=admin user"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.Users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.Users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) getMe(c *gin.Context) {
	me, err := h.services.Users.Me(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

func (h *Handler) updateMe(c *gin.Context) {
	var req profilePatchRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.services.Users.UpdateMe(c.Request.Context(), caller(c), models.ProfilePatch{
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// setUserRoles replaces the user's roles with the given set
func (h *Handler) setUserRoles(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rolesRequest
	if !bindJSON(c, &req) {
		return
	}

	roles, err := h.services.Users.SetRoles(c.Request.Context(), id, req.Roles)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": id,
		"roles":   roles,
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Users.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := h.services.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// getRevenue handles GET /analytics/revenue?period=7days|30days|90days|1year
func (h *Handler) getRevenue(c *gin.Context) {
	revenue, err := h.services.Analytics.Revenue(c.Request.Context(), c.DefaultQuery("period", "7days"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, revenue)
}

func (h *Handler) getProductStats(c *gin.Context) {
	stats, err := h.services.Analytics.ProductStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
