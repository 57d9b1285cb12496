package service

import (
	"context"
	"errors"
	"time"

	"roombook/internal/metrics"
	"roombook/internal/model"
	"roombook/internal/repository"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"

	"go.uber.org/zap"
)

type BookingService struct {
	bookings repository.BookingInterface
	rooms    repository.MeetingRoomInterface
	observer metrics.Observer
}

func NewBookingService(bookings repository.BookingInterface, rooms repository.MeetingRoomInterface, observer metrics.Observer) *BookingService {
	return &BookingService{bookings: bookings, rooms: rooms, observer: observer}
}

func (s *BookingService) List(ctx context.Context, filter repository.BookingFilter, pageNo, pageSize int) (*v1.BookingList, error) {
	offset, limit := page(pageNo, pageSize)
	bookings, total, err := s.bookings.Search(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	list := &v1.BookingList{Bookings: make([]v1.Booking, 0, len(bookings)), TotalCount: total}
	for i := range bookings {
		b := &bookings[i]
		list.Bookings = append(list.Bookings, v1.Booking{
			ID:         b.ID,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
			Status:     b.Status,
			Note:       b.Note,
			CreateTime: b.CreatedAt,
			UpdateTime: b.UpdatedAt,
			User:       v1.BookingUser{ID: b.User.ID, Username: b.User.Username, NickName: b.User.NickName},
			Room:       toMeetingRoom(&b.Room),
		})
	}
	return list, nil
}

// Add books a room for userID. The booking starts out pending.
func (s *BookingService) Add(ctx context.Context, userID uint64, req v1.AddBooking) error {
	start := time.UnixMilli(req.StartTime)
	end := time.UnixMilli(req.EndTime)
	if !end.After(start) {
		s.observer.RecordBooking(metrics.ResultRejected)
		return ErrInvalidTimeRange
	}

	if _, err := s.rooms.FindByID(ctx, req.MeetingRoomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.observer.RecordBooking(metrics.ResultRejected)
			return ErrRoomNotFound
		}
		s.observer.RecordBooking(metrics.ResultError)
		return err
	}

	booking := &model.Booking{
		UserID:    userID,
		RoomID:    req.MeetingRoomID,
		StartTime: start,
		EndTime:   end,
		Status:    constraints.BookingPending,
		Note:      req.Note,
	}
	err := s.bookings.Create(ctx, booking)
	if errors.Is(err, repository.ErrConflict) {
		s.observer.RecordBooking(metrics.ResultRejected)
		return ErrBookingConflict
	}
	if err != nil {
		s.observer.RecordBooking(metrics.ResultError)
		return err
	}

	s.observer.RecordBooking(metrics.ResultSuccess)
	logger.Info("booking created",
		zap.Uint64("booking_id", booking.ID),
		zap.Uint64("room_id", booking.RoomID),
		zap.Time("start", start),
		zap.Time("end", end))
	return nil
}

// Unbind releases a booking. Only its owner or an admin may do so.
func (s *BookingService) Unbind(ctx context.Context, op *OperatorInfo, id uint64) error {
	booking, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if booking.UserID != op.UserID && !op.IsAdmin {
		return ErrForbidden
	}
	if booking.Status == constraints.BookingReleased {
		return nil
	}
	return s.bookings.UpdateStatus(ctx, id, constraints.BookingReleased)
}
