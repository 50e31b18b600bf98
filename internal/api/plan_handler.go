package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/excel"
	"alcyxob/plan-compiler/internal/plan"
	"alcyxob/plan-compiler/internal/repository"
	"alcyxob/plan-compiler/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs for API (Data Transfer Objects) ---

// WorkoutResponse is the DTO for returning a compiled workout.
type WorkoutResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	PinnedDate  *string       `json:"pinnedDate,omitempty"`
	Steps       []domain.Step `json:"steps"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	resp := WorkoutResponse{
		ID:          w.ID.Hex(),
		Name:        w.Name,
		Description: w.Description,
		Steps:       w.Steps,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if w.PinnedDate != nil {
		date := w.PinnedDate.Format(plan.DateLayout)
		resp.PinnedDate = &date
	}
	return resp
}

// MapWorkoutsToResponse converts a slice of domain.Workout to DTOs.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i, w := range workouts {
		responses[i] = MapWorkoutToResponse(&w)
	}
	return responses
}

// importOptionsFromQuery reads the shared import tuning flags.
func importOptionsFromQuery(c *gin.Context) service.ImportOptions {
	return service.ImportOptions{
		NameFilter: c.Query("name_filter"),
		Replace:    c.Query("replace") == "true",
		Treadmill:  c.Query("treadmill") == "true",
		DryRun:     c.Query("dry_run") == "true",
	}
}

// --- Handler Methods ---

// ImportPlan accepts a YAML plan document body, compiles it, and stores
// the workouts.
// POST /api/v1/plans/import?replace=&treadmill=&dry_run=&name_filter=
func (h *PlanHandler) ImportPlan(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}
	doc, err := plan.ParseDocument(body)
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid plan document: %v", err))
		return
	}

	h.runImport(c, doc)
}

// ImportWorkbook accepts an .xlsx plan workbook as a multipart "file" field.
// POST /api/v1/plans/import/workbook?replace=&treadmill=&dry_run=&name_filter=
func (h *PlanHandler) ImportWorkbook(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Failed to open uploaded file: %v", err))
		return
	}
	defer file.Close()

	doc, err := excel.ReadPlan(file)
	if err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid plan workbook: %v", err))
		return
	}

	h.runImport(c, doc)
}

func (h *PlanHandler) runImport(c *gin.Context, doc *plan.Document) {
	summary, err := h.planService.ImportDocument(c.Request.Context(), doc, importOptionsFromQuery(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidNameFilter) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		// Compile errors identify the failing workout and step.
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportPlan returns the stored workouts as a YAML plan document.
// GET /api/v1/plans/export?prefix=&clean=
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	doc, err := h.planService.ExportDocument(c.Request.Context(), service.ExportOptions{
		Prefix: c.Query("prefix"),
		Clean:  c.Query("clean") == "true",
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export plan")
		return
	}
	data, err := plan.EncodeDocument(doc)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to encode plan document")
		return
	}
	c.Data(http.StatusOK, "application/yaml", data)
}

// ExportWorkbook returns the stored workouts as an .xlsx attachment.
// GET /api/v1/plans/export/workbook?prefix=&clean=
func (h *PlanHandler) ExportWorkbook(c *gin.Context) {
	doc, err := h.planService.ExportDocument(c.Request.Context(), service.ExportOptions{
		Prefix: c.Query("prefix"),
		Clean:  c.Query("clean") == "true",
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export plan")
		return
	}
	var buf bytes.Buffer
	if err := excel.WritePlan(&buf, doc); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to render plan workbook")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="plan.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ArchiveExport uploads the export to object storage and returns a
// presigned download URL.
// POST /api/v1/plans/export/archive?prefix=&clean=
func (h *PlanHandler) ArchiveExport(c *gin.Context) {
	doc, err := h.planService.ExportDocument(c.Request.Context(), service.ExportOptions{
		Prefix: c.Query("prefix"),
		Clean:  c.Query("clean") == "true",
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export plan")
		return
	}
	url, err := h.planService.ArchiveExport(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, service.ErrArchiveDisabled) {
			abortWithError(c, http.StatusNotImplemented, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to archive export")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ListWorkouts returns stored workouts, optionally filtered by name prefix.
// GET /api/v1/workouts?prefix=
func (h *PlanHandler) ListWorkouts(c *gin.Context) {
	workouts, err := h.planService.ListWorkouts(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetWorkout returns one stored workout by full name.
// GET /api/v1/workouts/:name
func (h *PlanHandler) GetWorkout(c *gin.Context) {
	workout, err := h.planService.GetWorkout(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch workout")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// DeleteWorkouts removes stored workouts by name prefix, optionally
// narrowed by a regex.
// DELETE /api/v1/workouts?prefix=&name_filter=
func (h *PlanHandler) DeleteWorkouts(c *gin.Context) {
	prefix := c.Query("prefix")
	nameFilter := c.Query("name_filter")
	if prefix == "" && nameFilter == "" {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'prefix' or 'name_filter' is required")
		return
	}
	deleted, err := h.planService.DeleteWorkouts(c.Request.Context(), prefix, nameFilter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidNameFilter) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete workouts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
