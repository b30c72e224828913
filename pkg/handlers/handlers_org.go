package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// CreateOrganization registers a new tenant (admin only)
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	org := models.Organization{Name: req.Name}
	if err := h.DB.Create(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create organization"})
		return
	}
	c.JSON(http.StatusOK, org)
}

// ListOrganizations returns all tenants (admin only)
func (h *Handler) ListOrganizations(c *gin.Context) {
	var orgs []models.Organization
	h.DB.Order("name").Find(&orgs)
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}
