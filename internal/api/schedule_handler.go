package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"alcyxob/plan-compiler/internal/domain"
	"alcyxob/plan-compiler/internal/plan"
	"alcyxob/plan-compiler/internal/service"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler holds the schedule service dependency.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// --- DTOs for API (Data Transfer Objects) ---

// ScheduleRequest defines the expected JSON for a scheduling run.
type ScheduleRequest struct {
	Prefix   string   `json:"prefix"`
	RaceDay  string   `json:"raceDay" binding:"required"`
	Weekdays []string `json:"weekdays"`
	DryRun   bool     `json:"dryRun"`
}

// ScheduledEntryResponse is the DTO for one calendar entry.
type ScheduledEntryResponse struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}

// --- Handler Methods ---

// Schedule assigns calendar dates to a plan's workouts.
// POST /api/v1/schedule
func (h *ScheduleHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	raceDay, err := time.Parse(plan.DateLayout, req.RaceDay)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid raceDay: %v", err))
		return
	}
	weekdays, err := parseWeekdays(req.Weekdays)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.scheduleService.Schedule(c.Request.Context(), service.ScheduleRequest{
		Prefix:   req.Prefix,
		RaceDay:  raceDay,
		Weekdays: weekdays,
		DryRun:   req.DryRun,
	})
	if err != nil {
		var pinErr *plan.InvalidScheduleDateError
		var windowErr *plan.InsufficientScheduleWindowError
		switch {
		case errors.Is(err, service.ErrNoWorkoutsToSchedule):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, plan.ErrNoWorkoutDays):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &pinErr), errors.As(err, &windowErr):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to schedule plan")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// Unschedule clears the calendar entries of a plan.
// DELETE /api/v1/schedule?prefix=
func (h *ScheduleHandler) Unschedule(c *gin.Context) {
	cleared, err := h.scheduleService.Unschedule(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to unschedule plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

// ListScheduled returns calendar entries in a date range, optionally
// narrowed to one plan by name prefix.
// GET /api/v1/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD&prefix=
func (h *ScheduleHandler) ListScheduled(c *gin.Context) {
	from, err := time.Parse(plan.DateLayout, c.DefaultQuery("from", "0001-01-01"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid from date: %v", err))
		return
	}
	to, err := time.Parse(plan.DateLayout, c.DefaultQuery("to", "9999-12-31"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid to date: %v", err))
		return
	}

	entries, err := h.scheduleService.ListScheduled(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list scheduled workouts")
		return
	}
	if prefix := c.Query("prefix"); prefix != "" {
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name, prefix) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	c.JSON(http.StatusOK, mapScheduledToResponse(entries))
}

func mapScheduledToResponse(entries []domain.ScheduledWorkout) []ScheduledEntryResponse {
	responses := make([]ScheduledEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ScheduledEntryResponse{
			Name: entry.Name,
			Date: entry.Date.Format(plan.DateLayout),
		}
	}
	return responses
}
