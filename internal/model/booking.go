package model

import "time"

type Booking struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index"`
	RoomID    uint64    `gorm:"not null;index:idx_room_time"`
	StartTime time.Time `gorm:"not null;index:idx_room_time"`
	EndTime   time.Time `gorm:"not null"`
	Status    string    `gorm:"size:20;not null;default:pending"`
	Note      string    `gorm:"size:100;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User        `gorm:"foreignKey:UserID"`
	Room MeetingRoom `gorm:"foreignKey:RoomID"`
}
