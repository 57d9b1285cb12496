package req

type CaptchaQuery struct {
	Address string `form:"address" binding:"required,email"`
}

type RefreshQuery struct {
	RefreshToken string `form:"refresh_token" binding:"required"`
}

type MeetingRoomQuery struct {
	Name      string `form:"name"`
	Capacity  int    `form:"capacity" binding:"min=0"`
	Equipment string `form:"equipment"`
	PageNo    int    `form:"pageNo,default=1" binding:"min=1"`
	PageSize  int    `form:"pageSize,default=10" binding:"min=1"`
}

// BookingQuery bounds are Unix milliseconds; zero means unbounded.
type BookingQuery struct {
	Username            string `form:"username"`
	MeetingRoomName     string `form:"meetingRoomName"`
	MeetingRoomPosition string `form:"meetingRoomPosition"`
	RangeStart          int64  `form:"bookingTimeRangeStart"`
	RangeEnd            int64  `form:"bookingTimeRangeEnd"`
	PageNo              int    `form:"pageNo,default=1" binding:"min=1"`
	PageSize            int    `form:"pageSize,default=10" binding:"min=1"`
}

type BookingURI struct {
	ID uint64 `uri:"id" binding:"required"`
}
