package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
	"github.com/Basel6/Private-Coach-Web-App/pkg/response"
)

type bookingService interface {
	Commit(ctx context.Context, req dto.CommitBookingsRequest) (*dto.CommitBookingsResponse, error)
}

// BookingHandler exposes the commit endpoint turning suggestions into
// bookings.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Commit books the chosen suggestions from an open session.
func (h *BookingHandler) Commit(c *gin.Context) {
	var req dto.CommitBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
		return
	}
	resp, err := h.service.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Committed == 0 {
		status = http.StatusConflict
	}
	response.JSON(c, status, resp, nil)
}
