package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hostelia/backoffice-api-go/pkg/models"
)

// APIKey is an HMAC-signed tenant credential bound to one organization.
type APIKey struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Key            string     `gorm:"unique;not null" json:"key"`
	Name           string     `gorm:"not null" json:"name"`
	KeyPreview     string     `json:"key_preview"`
	OrganizationID string     `gorm:"type:uuid;index" json:"organization_id"`
	RateLimit      int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt      time.Time  `json:"created_at"`
	LastUsed       *time.Time `json:"last_used"`
}

// APIUsage accumulates per-key per-day generation activity.
type APIUsage struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	KeyID            uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date             string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount     int    `gorm:"default:0" json:"request_count"`
	TotalShifts      int    `gorm:"default:0" json:"total_shifts"`
	TotalAssignments int    `gorm:"default:0" json:"total_assignments"`
}

// MasterUser is a back-office administrator account.
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB initializes the database connection and migrates the schema.
// DATABASE_URL selects Postgres; otherwise a local sqlite file is used.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "backoffice.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&models.Organization{}, &models.ScheduleMonth{},
		&models.CoverageRule{}, &models.CoverageOverride{},
		&models.ShiftTemplate{}, &models.Shift{}, &models.ShiftAssignment{},
		&models.StaffProfile{}, &models.StaffScheduleRule{}, &models.StaffTimeOff{},
	)

	return db
}
