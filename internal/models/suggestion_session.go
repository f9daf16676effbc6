package models

import "time"

// Suggestion is one proposed slot occurrence returned to a client.
type Suggestion struct {
	SlotID     int64   `json:"slot_id"`
	CoachID    int64   `json:"coach_id"`
	CoachName  string  `json:"coach_name"`
	DayOfWeek  int     `json:"day_of_week"`
	StartHour  int     `json:"start_hour"`
	Date       string  `json:"date"`
	Confidence float64 `json:"confidence"`
	Capacity   int     `json:"capacity"`
	Score      float64 `json:"score"`
}

// SuggestionSession tracks one client's suggestion round-trips so that
// re-suggestions never repeat a slot already shown. History accumulates
// every slot id ever surfaced within the session.
type SuggestionSession struct {
	Token            string       `json:"token"`
	ClientID         int64        `json:"client_id"`
	PreferredDate    *time.Time   `json:"preferred_date,omitempty"`
	DaysFlexibility  int          `json:"days_flexibility"`
	NumSessions      int          `json:"num_sessions"`
	Suggestions      []Suggestion `json:"suggestions"`
	SuggestedHistory []int64      `json:"suggested_history"`
	CreatedAt        time.Time    `json:"created_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	Active           bool         `json:"active"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *SuggestionSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// HasSuggestion reports whether the slot id is among the current suggestions.
func (s *SuggestionSession) HasSuggestion(slotID int64) bool {
	for _, sg := range s.Suggestions {
		if sg.SlotID == slotID {
			return true
		}
	}
	return false
}

// FoldHistory merges the current suggestions into the cumulative history,
// skipping ids already present.
func (s *SuggestionSession) FoldHistory() {
	seen := make(map[int64]struct{}, len(s.SuggestedHistory))
	for _, id := range s.SuggestedHistory {
		seen[id] = struct{}{}
	}
	for _, sg := range s.Suggestions {
		if _, ok := seen[sg.SlotID]; !ok {
			s.SuggestedHistory = append(s.SuggestedHistory, sg.SlotID)
			seen[sg.SlotID] = struct{}{}
		}
	}
}
