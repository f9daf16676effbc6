package dto

// CommitBookingsRequest books a subset of the current suggestions.
type CommitBookingsRequest struct {
	ClientID int64   `json:"clientId" validate:"required,min=1"`
	Token    string  `json:"token" validate:"required,uuid4"`
	SlotIDs  []int64 `json:"slotIds" validate:"required,min=1,dive,min=1"`
}

// CommittedBooking reports the outcome for one requested slot.
type CommittedBooking struct {
	SlotID    int64  `json:"slotId"`
	BookingID int64  `json:"bookingId,omitempty"`
	Date      string `json:"date,omitempty"`
	Booked    bool   `json:"booked"`
	Reason    string `json:"reason,omitempty"`
}

// CommitBookingsResponse summarises the commit transaction.
type CommitBookingsResponse struct {
	Results   []CommittedBooking `json:"results"`
	Committed int                `json:"committed"`
	Failed    int                `json:"failed"`
}
