package api

import (
	"net/http"

	"alcyxob/plan-compiler/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	scheduleService service.ScheduleService,
) {
	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService)
	scheduleHandler := NewScheduleHandler(scheduleService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Plan Import/Export ---
		planGroup := protected.Group("/plans")
		{
			// POST /api/v1/plans/import - YAML document body
			planGroup.POST("/import", planHandler.ImportPlan)
			// POST /api/v1/plans/import/workbook - multipart .xlsx upload
			planGroup.POST("/import/workbook", planHandler.ImportWorkbook)
			// GET /api/v1/plans/export - YAML document
			planGroup.GET("/export", planHandler.ExportPlan)
			// GET /api/v1/plans/export/workbook - .xlsx attachment
			planGroup.GET("/export/workbook", planHandler.ExportWorkbook)
			// POST /api/v1/plans/export/archive - upload to object storage
			planGroup.POST("/export/archive", planHandler.ArchiveExport)
		}

		// --- Stored Workouts ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", planHandler.ListWorkouts)
			workoutGroup.GET("/:name", planHandler.GetWorkout)
			workoutGroup.DELETE("", planHandler.DeleteWorkouts)
		}

		// --- Calendar ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.POST("", scheduleHandler.Schedule)
			scheduleGroup.GET("", scheduleHandler.ListScheduled)
			scheduleGroup.DELETE("", scheduleHandler.Unschedule)
		}
	}
}
