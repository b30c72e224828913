package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// CreateMonth creates a schedule month for the caller's organization
func (h *Handler) CreateMonth(c *gin.Context) {
	var req struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year/month"})
		return
	}

	month := models.ScheduleMonth{
		OrganizationID: orgID(c),
		Year:           req.Year,
		Month:          req.Month,
		Status:         models.MonthDraft,
	}
	if err := h.DB.Create(&month).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create schedule month"})
		return
	}
	c.JSON(http.StatusOK, month)
}

// ListMonths returns the organization's schedule months
func (h *Handler) ListMonths(c *gin.Context) {
	var months []models.ScheduleMonth
	h.DB.Where("organization_id = ?", orgID(c)).Order("year desc, month desc").Find(&months)
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// PublishMonth marks a schedule month as published
func (h *Handler) PublishMonth(c *gin.Context) {
	res := h.DB.Model(&models.ScheduleMonth{}).
		Where("id = ? AND organization_id = ?", c.Param("id"), orgID(c)).
		Update("status", models.MonthPublished)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule month not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Month published"})
}

// CreateCoverageRule creates a weekly coverage rule
func (h *Handler) CreateCoverageRule(c *gin.Context) {
	var req struct {
		Weekday       int    `json:"weekday"`
		ShiftCode     string `json:"shift_code"`
		Station       string `json:"station"`
		RequiredStaff int    `json:"required_staff"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 || req.ShiftCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday (0-6) and shift_code are required"})
		return
	}

	rule := models.CoverageRule{
		OrganizationID: orgID(c),
		Weekday:        req.Weekday,
		ShiftCode:      req.ShiftCode,
		Station:        req.Station,
		RequiredStaff:  req.RequiredStaff,
	}
	if err := h.DB.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create coverage rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListCoverageRules returns the organization's weekly coverage rules
func (h *Handler) ListCoverageRules(c *gin.Context) {
	var rules []models.CoverageRule
	h.DB.Where("organization_id = ?", orgID(c)).Order("weekday, shift_code, station").Find(&rules)
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// DeleteCoverageRule deletes one weekly coverage rule
func (h *Handler) DeleteCoverageRule(c *gin.Context) {
	res := h.DB.Where("id = ? AND organization_id = ?", c.Param("id"), orgID(c)).Delete(&models.CoverageRule{})
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coverage rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coverage rule deleted"})
}

// CreateCoverageOverride creates a date-specific coverage override
func (h *Handler) CreateCoverageOverride(c *gin.Context) {
	var req struct {
		Date          string `json:"date"`
		ShiftCode     string `json:"shift_code"`
		Station       string `json:"station"`
		RequiredStaff int    `json:"required_staff"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	if req.ShiftCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shift_code is required"})
		return
	}

	override := models.CoverageOverride{
		OrganizationID: orgID(c),
		Date:           date,
		ShiftCode:      req.ShiftCode,
		Station:        req.Station,
		RequiredStaff:  req.RequiredStaff,
	}
	if err := h.DB.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create coverage override"})
		return
	}
	c.JSON(http.StatusOK, override)
}

// ListCoverageOverrides returns the organization's date overrides
func (h *Handler) ListCoverageOverrides(c *gin.Context) {
	var overrides []models.CoverageOverride
	h.DB.Where("organization_id = ?", orgID(c)).Order("date, shift_code, station").Find(&overrides)
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

// DeleteCoverageOverride deletes one date override
func (h *Handler) DeleteCoverageOverride(c *gin.Context) {
	res := h.DB.Where("id = ? AND organization_id = ?", c.Param("id"), orgID(c)).Delete(&models.CoverageOverride{})
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coverage override not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coverage override deleted"})
}

// UpsertShiftTemplate creates or replaces the organization's template
// for a shift code
func (h *Handler) UpsertShiftTemplate(c *gin.Context) {
	var req struct {
		ShiftCode string `json:"shift_code"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ShiftCode == "" || !validClock(req.StartTime) || !validClock(req.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shift_code and HH:MM start/end times are required"})
		return
	}

	var tpl models.ShiftTemplate
	err := h.DB.Where("organization_id = ? AND shift_code = ?", orgID(c), req.ShiftCode).First(&tpl).Error
	if err == nil {
		tpl.StartTime = req.StartTime
		tpl.EndTime = req.EndTime
		if err := h.DB.Save(&tpl).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update template"})
			return
		}
		c.JSON(http.StatusOK, tpl)
		return
	}

	tpl = models.ShiftTemplate{
		OrganizationID: orgID(c),
		ShiftCode:      req.ShiftCode,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}
	if err := h.DB.Create(&tpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create template"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// ListShiftTemplates returns the organization's shift templates
func (h *Handler) ListShiftTemplates(c *gin.Context) {
	var templates []models.ShiftTemplate
	h.DB.Where("organization_id = ?", orgID(c)).Order("shift_code").Find(&templates)
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// CreateStaff creates a staff profile
func (h *Handler) CreateStaff(c *gin.Context) {
	var req struct {
		Name   string `json:"name"`
		Active *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	staff := models.StaffProfile{
		OrganizationID: orgID(c),
		Name:           req.Name,
		Active:         active,
	}
	if err := h.DB.Create(&staff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create staff profile"})
		return
	}
	c.JSON(http.StatusOK, staff)
}

// ListStaff returns the organization's staff profiles
func (h *Handler) ListStaff(c *gin.Context) {
	var staff []models.StaffProfile
	h.DB.Where("organization_id = ?", orgID(c)).Order("name, id").Find(&staff)
	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// UpdateStaffActive toggles a staff member's active flag
func (h *Handler) UpdateStaffActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.DB.Model(&models.StaffProfile{}).
		Where("id = ? AND organization_id = ?", c.Param("id"), orgID(c)).
		Update("active", req.Active)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff updated"})
}

// UpsertStaffRule sets the scheduling constraints of one staff member
func (h *Handler) UpsertStaffRule(c *gin.Context) {
	staffID := c.Param("id")
	var req struct {
		AllowedShiftCodes  string `json:"allowed_shift_codes"`
		MaxConsecutiveDays int    `json:"max_consecutive_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var staff models.StaffProfile
	if err := h.DB.Where("id = ? AND organization_id = ?", staffID, orgID(c)).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff profile not found"})
		return
	}

	var rule models.StaffScheduleRule
	err := h.DB.Where("staff_id = ?", staffID).First(&rule).Error
	if err == nil {
		rule.AllowedShiftCodes = req.AllowedShiftCodes
		rule.MaxConsecutiveDays = req.MaxConsecutiveDays
		if err := h.DB.Save(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update staff rule"})
			return
		}
		c.JSON(http.StatusOK, rule)
		return
	}

	rule = models.StaffScheduleRule{
		StaffID:            staffID,
		AllowedShiftCodes:  req.AllowedShiftCodes,
		MaxConsecutiveDays: req.MaxConsecutiveDays,
	}
	if err := h.DB.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create staff rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// CreateTimeOff files a time off request for a staff member
func (h *Handler) CreateTimeOff(c *gin.Context) {
	var req struct {
		StaffID   string `json:"staff_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(models.DateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(models.DateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date before start_date"})
		return
	}

	var staff models.StaffProfile
	if err := h.DB.Where("id = ? AND organization_id = ?", req.StaffID, orgID(c)).First(&staff).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff profile not found"})
		return
	}

	timeOff := models.StaffTimeOff{
		StaffID:   req.StaffID,
		StartDate: start,
		EndDate:   end,
		Status:    models.TimeOffPending,
	}
	if err := h.DB.Create(&timeOff).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create time off"})
		return
	}
	c.JSON(http.StatusOK, timeOff)
}

// ApproveTimeOff marks a time off request approved
func (h *Handler) ApproveTimeOff(c *gin.Context) {
	res := h.DB.Model(&models.StaffTimeOff{}).
		Where("staff_time_offs.id = ?", c.Param("id")).
		Where("staff_id IN (?)", h.DB.Model(&models.StaffProfile{}).Select("id").Where("organization_id = ?", orgID(c))).
		Update("status", models.TimeOffApproved)
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Time off not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time off approved"})
}

// ListTimeOff returns the organization's time off requests
func (h *Handler) ListTimeOff(c *gin.Context) {
	var timeOff []models.StaffTimeOff
	h.DB.Where("staff_id IN (?)", h.DB.Model(&models.StaffProfile{}).Select("id").Where("organization_id = ?", orgID(c))).
		Order("start_date").
		Find(&timeOff)
	c.JSON(http.StatusOK, gin.H{"time_off": timeOff})
}

// validClock accepts "HH:MM" times.
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
