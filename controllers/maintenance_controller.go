package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/services"
)

// MaintenanceTaskRequest represents the request body for creating or editing
// a maintenance task. Checklist entries without an id are new items.
type MaintenanceTaskRequest struct {
	AssetID        uuid.UUID                     `json:"asset_id"`
	Title          string                        `json:"title" binding:"required"`
	Description    *string                       `json:"description"`
	ScheduledDate  string                        `json:"scheduled_date" binding:"required"`
	AssignedTo     *string                       `json:"assigned_to"`
	Status         string                        `json:"status"`
	ChecklistItems []services.ChecklistItemInput `json:"checklist_items"`
	RemovedItemIDs []uuid.UUID                   `json:"removed_item_ids"`
}

func (r MaintenanceTaskRequest) input() (services.MaintenanceTaskInput, error) {
	scheduled, err := parseDate(r.ScheduledDate)
	if err != nil {
		return services.MaintenanceTaskInput{}, &services.ValidationError{Field: "scheduled_date", Message: "expected a date as YYYY-MM-DD"}
	}
	return services.MaintenanceTaskInput{
		AssetID:        r.AssetID,
		Title:          r.Title,
		Description:    r.Description,
		ScheduledDate:  scheduled,
		AssignedTo:     r.AssignedTo,
		Status:         models.MaintenanceStatus(r.Status),
		ChecklistItems: r.ChecklistItems,
		RemovedItemIDs: r.RemovedItemIDs,
	}, nil
}

type MaintenanceController struct {
	Tasks *services.MaintenanceService
}

func NewMaintenanceController(tasks *services.MaintenanceService) *MaintenanceController {
	return &MaintenanceController{Tasks: tasks}
}

// CreateTask handles POST /api/v1/maintenance-tasks
func (mc *MaintenanceController) CreateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req MaintenanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	task, err := mc.Tasks.CreateTask(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusCreated, task)
}

// ListTasks handles GET /api/v1/maintenance-tasks?status=&search=&asset_id=
func (mc *MaintenanceController) ListTasks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filter := services.MaintenanceFilter{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		s := models.MaintenanceStatus(status)
		filter.Status = &s
	}
	if raw := c.Query("asset_id"); raw != "" {
		assetID, err := uuid.Parse(raw)
		if err != nil {
			respondFailure(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid asset ID", nil)
			return
		}
		filter.AssetID = &assetID
	}

	tasks, err := mc.Tasks.ListTasks(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusOK, tasks)
}

// Calendar handles GET /api/v1/maintenance-tasks/calendar?start=&end=
// Both dates are inclusive.
func (mc *MaintenanceController) Calendar(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	start, err := parseDate(c.Query("start"))
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "start must be a date as YYYY-MM-DD", nil)
		return
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "end must be a date as YYYY-MM-DD", nil)
		return
	}
	if len(c.Query("end")) == len(dateLayout) {
		// a bare date covers the whole day
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	tasks, err := mc.Tasks.Calendar(c.Request.Context(), actor, start, end)
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/maintenance-tasks/:id
func (mc *MaintenanceController) GetTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "maintenance task")
	if !ok {
		return
	}

	task, err := mc.Tasks.GetTask(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusOK, task)
}

// UpdateTask handles PUT /api/v1/maintenance-tasks/:id
func (mc *MaintenanceController) UpdateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "maintenance task")
	if !ok {
		return
	}

	var req MaintenanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailure(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	task, err := mc.Tasks.UpdateTask(c.Request.Context(), actor, id, in)
	if err != nil {
		var partial *services.PartialFailureError
		if task != nil && errors.As(err, &partial) {
			c.JSON(http.StatusMultiStatus, gin.H{
				"success": false,
				"data":    task,
				"error": gin.H{
					"code":    "PARTIAL_FAILURE",
					"message": partial.Error(),
					"details": failureDetails(partial),
				},
			})
			return
		}
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/maintenance-tasks/:id
func (mc *MaintenanceController) DeleteTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "maintenance task")
	if !ok {
		return
	}

	if err := mc.Tasks.DeleteTask(c.Request.Context(), actor, id); err != nil {
		respondError(c, "maintenance task", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
