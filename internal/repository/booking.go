package repository

import (
	"context"
	"time"

	"roombook/internal/model"
	"roombook/pkg/constraints"

	"gorm.io/gorm"
)

// BookingFilter narrows a booking search. Zero values do not filter; Start and
// End bound the booking start time.
type BookingFilter struct {
	Username     string
	RoomName     string
	RoomLocation string
	Start        time.Time
	End          time.Time
}

type BookingInterface interface {
	Search(ctx context.Context, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error)
	FindByID(ctx context.Context, id uint64) (*model.Booking, error)
	// Create inserts booking unless an active booking of the same room overlaps it.
	Create(ctx context.Context, booking *model.Booking) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Search(ctx context.Context, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Booking{}).
		Joins("JOIN users ON users.id = bookings.user_id").
		Joins("JOIN meeting_rooms ON meeting_rooms.id = bookings.room_id")
	if filter.Username != "" {
		db = db.Where("users.username LIKE ?", "%"+filter.Username+"%")
	}
	if filter.RoomName != "" {
		db = db.Where("meeting_rooms.name LIKE ?", "%"+filter.RoomName+"%")
	}
	if filter.RoomLocation != "" {
		db = db.Where("meeting_rooms.location LIKE ?", "%"+filter.RoomLocation+"%")
	}
	if !filter.Start.IsZero() {
		db = db.Where("bookings.start_time >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		db = db.Where("bookings.start_time <= ?", filter.End)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []model.Booking
	err := db.Preload("User").Preload("Room").
		Offset(offset).Limit(limit).
		Order("bookings.start_time DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&model.Booking{}).
			Where("room_id = ? AND status <> ?", booking.RoomID, constraints.BookingReleased).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrConflict
		}
		return tx.Create(booking).Error
	})
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Booking{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
