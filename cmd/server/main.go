package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hostelia/backoffice-api-go/pkg/auth"
	"github.com/hostelia/backoffice-api-go/pkg/database"
	"github.com/hostelia/backoffice-api-go/pkg/handlers"
	"github.com/hostelia/backoffice-api-go/pkg/scheduler"
	"github.com/hostelia/backoffice-api-go/pkg/store"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)
	h := &handlers.Handler{
		DB:     db,
		Engine: scheduler.NewGenerator(store.New(db)),
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Hostelia Back-Office API",
			"version": "1.4.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/organizations", h.CreateOrganization)
		admin.GET("/organizations", h.ListOrganizations)
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Tenant Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/months", h.CreateMonth)
		api.GET("/months", h.ListMonths)
		api.POST("/months/:id/publish", h.PublishMonth)
		api.POST("/months/:id/generate", h.GenerateSchedule)
		api.GET("/months/:id/shifts", h.ListMonthShifts)

		api.POST("/coverage/rules", h.CreateCoverageRule)
		api.GET("/coverage/rules", h.ListCoverageRules)
		api.DELETE("/coverage/rules/:id", h.DeleteCoverageRule)
		api.POST("/coverage/overrides", h.CreateCoverageOverride)
		api.GET("/coverage/overrides", h.ListCoverageOverrides)
		api.DELETE("/coverage/overrides/:id", h.DeleteCoverageOverride)

		api.POST("/templates", h.UpsertShiftTemplate)
		api.GET("/templates", h.ListShiftTemplates)

		api.POST("/staff", h.CreateStaff)
		api.GET("/staff", h.ListStaff)
		api.PUT("/staff/:id/active", h.UpdateStaffActive)
		api.PUT("/staff/:id/rule", h.UpsertStaffRule)

		api.POST("/timeoff", h.CreateTimeOff)
		api.GET("/timeoff", h.ListTimeOff)
		api.POST("/timeoff/:id/approve", h.ApproveTimeOff)

		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
