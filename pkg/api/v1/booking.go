package v1

import "time"

// AddBooking is the body of /booking/add. Times are Unix milliseconds.
type AddBooking struct {
	MeetingRoomID uint64 `json:"meetingRoomId" binding:"required"`
	StartTime     int64  `json:"startTime" binding:"required"`
	EndTime       int64  `json:"endTime" binding:"required"`
	Note          string `json:"note"`
}

type BookingUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	NickName string `json:"nickName"`
}

type Booking struct {
	ID         uint64      `json:"id"`
	StartTime  time.Time   `json:"startTime"`
	EndTime    time.Time   `json:"endTime"`
	Status     string      `json:"status"`
	Note       string      `json:"note"`
	CreateTime time.Time   `json:"createTime"`
	UpdateTime time.Time   `json:"updateTime"`
	User       BookingUser `json:"user"`
	Room       MeetingRoom `json:"room"`
}

type BookingList struct {
	Bookings   []Booking `json:"bookings"`
	TotalCount int64     `json:"totalCount"`
}
