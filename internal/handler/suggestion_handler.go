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

type suggestionService interface {
	Suggest(ctx context.Context, req dto.SuggestRequest) (*dto.SuggestResponse, error)
	ReSuggestAll(ctx context.Context, req dto.ReSuggestRequest) (*dto.SuggestResponse, error)
	ReSuggestOne(ctx context.Context, req dto.ReSuggestSlotRequest) (*dto.SuggestResponse, error)
	Session(ctx context.Context, token string, clientID int64) (*models.SuggestionSession, error)
}

// SuggestionHandler exposes the AI suggestion endpoints.
type SuggestionHandler struct {
	service suggestionService
}

// NewSuggestionHandler constructs the handler.
func NewSuggestionHandler(service suggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// Suggest runs a fresh optimization and opens a suggestion session.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}
	resp, err := h.service.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ReSuggestAll replaces the whole suggestion set of an open session.
func (h *SuggestionHandler) ReSuggestAll(c *gin.Context) {
	var req dto.ReSuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid re-suggestion payload"))
		return
	}
	resp, err := h.service.ReSuggestAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// ReSuggestOne swaps a single suggested slot for a fresh alternative.
func (h *SuggestionHandler) ReSuggestOne(c *gin.Context) {
	var req dto.ReSuggestSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid re-suggestion payload"))
		return
	}
	resp, err := h.service.ReSuggestOne(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Session returns the current state of an open suggestion session.
func (h *SuggestionHandler) Session(c *gin.Context) {
	clientID := requireClientIDQuery(c)
	if clientID == 0 {
		return
	}
	session, err := h.service.Session(c.Request.Context(), c.Param("token"), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
