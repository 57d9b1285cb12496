package repository

import (
	"context"

	"roombook/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomFilter narrows a meeting-room search. Zero values do not filter.
type RoomFilter struct {
	Name      string
	Capacity  int
	Equipment string
}

type MeetingRoomInterface interface {
	Search(ctx context.Context, filter RoomFilter, offset, limit int) ([]model.MeetingRoom, int64, error)
	FindByID(ctx context.Context, id uint64) (*model.MeetingRoom, error)
	Seed(ctx context.Context, rooms []model.MeetingRoom) error
}

type MeetingRoomRepository struct {
	db *gorm.DB
}

func NewMeetingRoomRepository(db *gorm.DB) *MeetingRoomRepository {
	return &MeetingRoomRepository{db: db}
}

func (r *MeetingRoomRepository) Search(ctx context.Context, filter RoomFilter, offset, limit int) ([]model.MeetingRoom, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.MeetingRoom{})
	if filter.Name != "" {
		db = db.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Capacity > 0 {
		db = db.Where("capacity = ?", filter.Capacity)
	}
	if filter.Equipment != "" {
		db = db.Where("equipment LIKE ?", "%"+filter.Equipment+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []model.MeetingRoom
	if err := db.Offset(offset).Limit(limit).Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

func (r *MeetingRoomRepository) FindByID(ctx context.Context, id uint64) (*model.MeetingRoom, error) {
	var room model.MeetingRoom
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

// Seed inserts rooms whose names are not taken yet.
func (r *MeetingRoomRepository) Seed(ctx context.Context, rooms []model.MeetingRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rooms).Error
}
