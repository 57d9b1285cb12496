package model

import "time"

type User struct {
	ID          uint64    `gorm:"primaryKey"`
	Username    string    `gorm:"size:50;not null;uniqueIndex"`
	Password    string    `gorm:"size:100;not null"`
	NickName    string    `gorm:"size:50;not null"`
	Email       string    `gorm:"size:50;not null;index"`
	HeadPic     string    `gorm:"size:100"`
	PhoneNumber string    `gorm:"size:20"`
	IsFrozen    bool      `gorm:"default:false"`
	IsAdmin     bool      `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
