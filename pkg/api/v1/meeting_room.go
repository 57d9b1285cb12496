package v1

import "time"

type MeetingRoom struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Location    string    `json:"location"`
	Equipment   string    `json:"equipment"`
	Description string    `json:"description"`
	IsBooked    bool      `json:"isBooked"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
}

type MeetingRoomList struct {
	MeetingRooms []MeetingRoom `json:"meetingRooms"`
	TotalCount   int64         `json:"totalCount"`
}
