package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"roombook/client"

	"github.com/spf13/cobra"
)

const (
	dateFlagLayout  = "2006-01-02"
	clockFlagLayout = "15:04"
)

// parseFlagTime reads value with layout in loc. The empty string is the zero time.
func parseFlagTime(name, layout, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want %s, got %q", name, layout, value)
	}
	return t, nil
}

// rangeFlags are the four date and time flags shared by bookings and book.
type rangeFlags struct {
	startDate, startTime, endDate, endTime string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "Start day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.startTime, "start-time", "", "Start time, HH:MM")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "End day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.endTime, "end-time", "", "End time, HH:MM")
}

func (f *rangeFlags) parse(loc *time.Location) (startDate, startTime, endDate, endTime time.Time, err error) {
	if startDate, err = parseFlagTime("start-date", dateFlagLayout, f.startDate, loc); err != nil {
		return
	}
	if startTime, err = parseFlagTime("start-time", clockFlagLayout, f.startTime, loc); err != nil {
		return
	}
	if endDate, err = parseFlagTime("end-date", dateFlagLayout, f.endDate, loc); err != nil {
		return
	}
	endTime, err = parseFlagTime("end-time", clockFlagLayout, f.endTime, loc)
	return
}

func newRoomsCmd() *cobra.Command {
	var name, equipment string
	var capacity, pageNo, pageSize int

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Search meeting rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.SearchMeetingRooms(ctx, name, capacity, equipment, pageNo, pageSize)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Room name contains")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "Exact capacity, 0 for any")
	cmd.Flags().StringVar(&equipment, "equipment", "", "Equipment contains")
	cmd.Flags().IntVar(&pageNo, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Page size")
	return cmd
}

func newBookingsCmd() *cobra.Command {
	var search client.SearchBooking
	var span rangeFlags
	var pageNo, pageSize int

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Search booking history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				var err error
				search.RangeStartDate, search.RangeStartTime, search.RangeEndDate, search.RangeEndTime, err = span.parse(s.loc)
				if err != nil {
					return nil, err
				}
				res, err := s.BookingList(ctx, search, pageNo, pageSize)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&search.Username, "username", "u", "", "Booker username contains")
	cmd.Flags().StringVar(&search.MeetingRoomName, "room", "", "Room name contains")
	cmd.Flags().StringVar(&search.MeetingRoomPosition, "location", "", "Room location contains")
	span.register(cmd)
	cmd.Flags().IntVar(&pageNo, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Page size")
	return cmd
}

func newBookCmd() *cobra.Command {
	var booking client.CreateBooking
	var span rangeFlags

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a meeting room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				var err error
				booking.RangeStartDate, booking.RangeStartTime, booking.RangeEndDate, booking.RangeEndTime, err = span.parse(s.loc)
				if err != nil {
					return nil, err
				}
				res, err := s.BookingAdd(ctx, booking)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().Uint64VarP(&booking.MeetingRoomID, "room-id", "r", 0, "Meeting room id (required)")
	cmd.Flags().StringVar(&booking.Note, "note", "", "Note for the approver")
	span.register(cmd)
	for _, f := range []string{"room-id", "start-date", "start-time", "end-date", "end-time"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newUnbindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unbind BOOKING_ID",
		Short: "Release a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("booking id %q is not a number", args[0])
			}
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.Unbind(ctx, id)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
}
