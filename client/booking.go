package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
)

// SearchBooking is the booking-history filter. Empty strings and zero times are unset.
type SearchBooking struct {
	Username            string
	MeetingRoomName     string
	MeetingRoomPosition string
	RangeStartDate      time.Time
	RangeStartTime      time.Time
	RangeEndDate        time.Time
	RangeEndTime        time.Time
}

// CreateBooking is the booking form. Only the calendar day of the dates and
// the hour and minute of the times are used.
type CreateBooking struct {
	MeetingRoomID  uint64
	RangeStartDate time.Time
	RangeStartTime time.Time
	RangeEndDate   time.Time
	RangeEndTime   time.Time
	Note           string
}

// BookingList searches bookings. The range start is sent whenever a start date is
// set (midnight if no start time); the range end only when both end date and
// end time are set.
func (c *Client) BookingList(ctx context.Context, search SearchBooking, pageNo, pageSize int) (*Result[v1.BookingList], error) {
	q := url.Values{}
	setIfPresent(q, "username", search.Username)
	setIfPresent(q, "meetingRoomName", search.MeetingRoomName)
	setIfPresent(q, "meetingRoomPosition", search.MeetingRoomPosition)

	if !search.RangeStartDate.IsZero() {
		start, err := joinDateTime(search.RangeStartDate, search.RangeStartTime, c.loc)
		if err != nil {
			return nil, err
		}
		q.Set("bookingTimeRangeStart", strconv.FormatInt(start, 10))
	}
	if !search.RangeEndDate.IsZero() && !search.RangeEndTime.IsZero() {
		end, err := joinDateTime(search.RangeEndDate, search.RangeEndTime, c.loc)
		if err != nil {
			return nil, err
		}
		q.Set("bookingTimeRangeEnd", strconv.FormatInt(end, 10))
	}
	q.Set("pageNo", strconv.Itoa(pageNo))
	q.Set("pageSize", strconv.Itoa(pageSize))

	return send[v1.BookingList](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathBookingList,
		query:  q,
	})
}

// Unbind cancels the booking with the given id.
func (c *Client) Unbind(ctx context.Context, id uint64) (*Result[string], error) {
	return send[string](ctx, c, call{
		method:     http.MethodGet,
		path:       constraints.PathBookingUnbind,
		pathParams: map[string]string{"id": strconv.FormatUint(id, 10)},
	})
}

// BookingAdd books a meeting room. All four date and time values are required.
func (c *Client) BookingAdd(ctx context.Context, booking CreateBooking) (*Result[string], error) {
	if booking.RangeStartDate.IsZero() || booking.RangeStartTime.IsZero() ||
		booking.RangeEndDate.IsZero() || booking.RangeEndTime.IsZero() {
		return nil, ErrIncompleteBooking
	}

	start, err := joinDateTime(booking.RangeStartDate, booking.RangeStartTime, c.loc)
	if err != nil {
		return nil, err
	}
	end, err := joinDateTime(booking.RangeEndDate, booking.RangeEndTime, c.loc)
	if err != nil {
		return nil, err
	}

	return send[string](ctx, c, call{
		method: http.MethodPost,
		path:   constraints.PathBookingAdd,
		body: v1.AddBooking{
			MeetingRoomID: booking.MeetingRoomID,
			StartTime:     start,
			EndTime:       end,
			Note:          booking.Note,
		},
	})
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
