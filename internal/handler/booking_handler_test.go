package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Basel6/Private-Coach-Web-App/internal/dto"
	appErrors "github.com/Basel6/Private-Coach-Web-App/pkg/errors"
)

type bookingServiceMock struct {
	resp *dto.CommitBookingsResponse
	err  error
}

func (m *bookingServiceMock) Commit(_ context.Context, _ dto.CommitBookingsRequest) (*dto.CommitBookingsResponse, error) {
	return m.resp, m.err
}

func TestBookingHandlerCommitCreated(t *testing.T) {
	mockSvc := &bookingServiceMock{resp: &dto.CommitBookingsResponse{
		Results:   []dto.CommittedBooking{{SlotID: 1, BookingID: 11, Booked: true}},
		Committed: 1,
	}}
	h := NewBookingHandler(mockSvc)

	c, w := postContext(t, "/api/v1/bookings/commit",
		[]byte(`{"clientId":42,"token":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d","slotIds":[1]}`))
	h.Commit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"committed":1`)
}

func TestBookingHandlerCommitAllRejected(t *testing.T) {
	mockSvc := &bookingServiceMock{resp: &dto.CommitBookingsResponse{
		Results: []dto.CommittedBooking{{SlotID: 1, Booked: false, Reason: "slot was filled after the suggestion was made"}},
		Failed:  1,
	}}
	h := NewBookingHandler(mockSvc)

	c, w := postContext(t, "/api/v1/bookings/commit",
		[]byte(`{"clientId":42,"token":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d","slotIds":[1]}`))
	h.Commit(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandlerCommitMalformedBody(t *testing.T) {
	h := NewBookingHandler(&bookingServiceMock{})

	c, w := postContext(t, "/api/v1/bookings/commit", []byte(`not-json`))
	h.Commit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerCommitForeignSession(t *testing.T) {
	h := NewBookingHandler(&bookingServiceMock{err: appErrors.ErrSessionAccessDenied})

	c, w := postContext(t, "/api/v1/bookings/commit",
		[]byte(`{"clientId":7,"token":"9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d","slotIds":[1]}`))
	h.Commit(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}
