package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	"github.com/Basel6/Private-Coach-Web-App/internal/models"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
	"github.com/Basel6/Private-Coach-Web-App/pkg/response"
)

type scheduleService interface {
	ListSlots(ctx context.Context, query dto.SlotQuery) ([]models.ScheduleSlot, error)
	GetPlan(ctx context.Context, clientID int64) (*models.PlanWithCoach, error)
	GetPreference(ctx context.Context, clientID int64) (*models.ClientPreference, error)
	UpsertPreference(ctx context.Context, clientID int64, req dto.UpsertPreferenceRequest) (*models.ClientPreference, error)
	Occupancy(ctx context.Context, query dto.OccupancyQuery) ([]models.SlotOccupancy, error)
}

// ScheduleHandler exposes the slot, plan, and preference endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// ListSlots returns schedule slots, optionally filtered by coach or day.
func (h *ScheduleHandler) ListSlots(c *gin.Context) {
	var query dto.SlotQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot filter"))
		return
	}
	slots, err := h.service.ListSlots(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// GetPlan returns the client's active plan with the coach's name.
func (h *ScheduleHandler) GetPlan(c *gin.Context) {
	clientID := requireClientIDParam(c)
	if clientID == 0 {
		return
	}
	plan, err := h.service.GetPlan(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// GetPreference returns the client's stored preferred window, if any.
func (h *ScheduleHandler) GetPreference(c *gin.Context) {
	clientID := requireClientIDParam(c)
	if clientID == 0 {
		return
	}
	pref, err := h.service.GetPreference(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// UpsertPreference creates or replaces the client's preferred window.
func (h *ScheduleHandler) UpsertPreference(c *gin.Context) {
	clientID := requireClientIDParam(c)
	if clientID == 0 {
		return
	}
	var req dto.UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}
	pref, err := h.service.UpsertPreference(c.Request.Context(), clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Occupancy summarises weekly slot utilisation.
func (h *ScheduleHandler) Occupancy(c *gin.Context) {
	var query dto.OccupancyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid occupancy filter"))
		return
	}
	occupancy, err := h.service.Occupancy(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}
