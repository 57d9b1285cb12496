package model

import "time"

type MeetingRoom struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"size:50;not null;uniqueIndex"`
	Capacity    int    `gorm:"not null"`
	Location    string `gorm:"size:50;not null"`
	Equipment   string `gorm:"size:50;default:''"`
	Description string `gorm:"size:100;default:''"`
	IsBooked    bool   `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
