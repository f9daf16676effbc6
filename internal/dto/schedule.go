package dto

// SlotQuery filters the slot listing.
type SlotQuery struct {
	CoachID   *int64 `form:"coachId" validate:"omitempty,min=1"`
	DayOfWeek *int   `form:"dayOfWeek" validate:"omitempty,min=0,max=6"`
}

// UpsertPreferenceRequest sets a client's preferred training window.
type UpsertPreferenceRequest struct {
	PreferredStartHour int  `json:"preferredStartHour" validate:"min=0,max=23"`
	PreferredEndHour   int  `json:"preferredEndHour" validate:"min=0,max=23"`
	IsFlexible         bool `json:"isFlexible"`
}

// OccupancyQuery selects the week window for the occupancy summary.
type OccupancyQuery struct {
	WeekStart string `form:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	CoachID   *int64 `form:"coachId" validate:"omitempty,min=1"`
}
