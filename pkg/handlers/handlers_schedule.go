package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelia/backoffice-api-go/pkg/models"
	"github.com/hostelia/backoffice-api-go/pkg/scheduler"
)

// GenerateSchedule regenerates the roster for a schedule month. The
// optional body narrows the window within the month; the organization
// scope comes from the API key.
func (h *Handler) GenerateSchedule(c *gin.Context) {
	var body struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	// Body is optional; ignore EOF on empty requests
	_ = c.ShouldBindJSON(&body)

	req := models.GenerateRequest{
		MonthID:         c.Param("id"),
		OrganizationIDs: []string{orgID(c)},
	}

	if body.From != "" {
		from, err := time.Parse(models.DateLayout, body.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
			return
		}
		req.From = &from
	}
	if body.To != "" {
		to, err := time.Parse(models.DateLayout, body.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
			return
		}
		req.To = &to
	}

	result, err := h.Engine.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, scheduler.ErrMonthNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule month not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.RecordUsage(c, result.CreatedShifts, result.CreatedAssignments)

	c.JSON(http.StatusOK, result)
}

// ListMonthShifts returns the roster of one month with assignments.
func (h *Handler) ListMonthShifts(c *gin.Context) {
	monthID := c.Param("id")

	var month models.ScheduleMonth
	if err := h.DB.Where("id = ? AND organization_id = ?", monthID, orgID(c)).First(&month).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule month not found"})
		return
	}

	var shifts []models.Shift
	if err := h.DB.Preload("Assignments").
		Where("schedule_month_id = ?", monthID).
		Order("date, shift_code, station").
		Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load shifts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "shifts": shifts})
}
