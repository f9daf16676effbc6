package dto

import "github.com/Basel6/Private-Coach-Web-App/internal/models"

// SuggestRequest asks the engine for a fresh set of session suggestions.
type SuggestRequest struct {
	ClientID        int64  `json:"clientId" validate:"required,min=1"`
	PreferredDate   string `json:"preferredDate" validate:"omitempty,datetime=2006-01-02"`
	DaysFlexibility int    `json:"daysFlexibility" validate:"omitempty,min=1,max=14"`
	NumSessions     int    `json:"numSessions" validate:"omitempty,min=0,max=7"`
}

// ReSuggestRequest replaces the full current suggestion set.
type ReSuggestRequest struct {
	ClientID int64  `json:"clientId" validate:"required,min=1"`
	Token    string `json:"token" validate:"required,uuid4"`
}

// ReSuggestSlotRequest swaps out a single suggested slot.
type ReSuggestSlotRequest struct {
	ClientID int64  `json:"clientId" validate:"required,min=1"`
	Token    string `json:"token" validate:"required,uuid4"`
	SlotID   int64  `json:"slotId" validate:"required,min=1"`
}

// WeekQuota summarises booked versus allowed sessions for one calendar week.
type WeekQuota struct {
	Booked    int `json:"booked"`
	Allowed   int `json:"allowed"`
	Remaining int `json:"remaining"`
}

// SuggestResponse carries the scheduling outcome back to the client.
type SuggestResponse struct {
	Token       string              `json:"token,omitempty"`
	Status      string              `json:"status"`
	Confidence  float64             `json:"confidence"`
	Requested   int                 `json:"requested"`
	Found       int                 `json:"found"`
	Suggestions []models.Suggestion `json:"suggestions"`
	Reasons     []string            `json:"reasons,omitempty"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
	CurrentWeek *WeekQuota          `json:"currentWeek,omitempty"`
	NextWeek    *WeekQuota          `json:"nextWeek,omitempty"`
	SolveTimeMS int64               `json:"solveTimeMs"`
	WeightsUsed string              `json:"weightsVersion"`
}
