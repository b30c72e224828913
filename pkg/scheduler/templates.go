package scheduler

import "github.com/hostelia/backoffice-api-go/pkg/models"

// builtinTemplates are the fallback shift times used when an
// organization has not configured a template for a code.
var builtinTemplates = map[string][2]string{
	models.ShiftMorning:   {"06:00", "14:00"},
	models.ShiftAfternoon: {"16:00", "00:00"},
	models.ShiftNight:     {"23:00", "07:00"},
}

const (
	defaultStartTime = "08:00"
	defaultEndTime   = "16:00"
)

// TemplateCatalog resolves shift codes to start/end times. Organization
// templates take precedence over the built-in table, which in turn
// precedes a generic 08:00-16:00 default.
type TemplateCatalog struct {
	byCode map[string]models.ShiftTemplate
}

// NewTemplateCatalog builds a catalog from the organization's templates.
func NewTemplateCatalog(templates []models.ShiftTemplate) *TemplateCatalog {
	byCode := make(map[string]models.ShiftTemplate, len(templates))
	for _, t := range templates {
		byCode[t.ShiftCode] = t
	}
	return &TemplateCatalog{byCode: byCode}
}

// Times returns the start and end time ("HH:MM") for a shift code.
func (c *TemplateCatalog) Times(shiftCode string) (string, string) {
	if t, ok := c.byCode[shiftCode]; ok {
		return t.StartTime, t.EndTime
	}
	if t, ok := builtinTemplates[shiftCode]; ok {
		return t[0], t[1]
	}
	return defaultStartTime, defaultEndTime
}
