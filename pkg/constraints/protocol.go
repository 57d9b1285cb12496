package constraints

// Business codes carried in the response envelope. The backend mirrors the HTTP status.
const (
	CodeOK           = 200
	CodeCreated      = 201
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeServerError  = 500
)

const (
	MessageSuccess = "success"
	MessageFail    = "fail"
)

// Credential store keys.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Endpoint paths, relative to the backend origin.
const (
	PathLogin                 = "/user/login"
	PathRefresh               = "/user/refresh"
	PathRegisterCaptcha       = "/user/register-captcha"
	PathRegister              = "/user/register"
	PathUpdatePasswordCaptcha = "/user/update_password/captcha"
	PathUpdatePassword        = "/user/update_password"
	PathUserInfo              = "/user/info"
	PathUpdateUser            = "/user/update"
	PathUpdateUserCaptcha     = "/user/update/captcha"
	PathMeetingRoomList       = "/meeting-room/list"
	PathBookingList           = "/booking/list"
	PathBookingUnbind         = "/booking/unbind/{id}"
	PathBookingAdd            = "/booking/add"
)

// Booking states.
const (
	BookingPending  = "pending"
	BookingApproved = "approved"
	BookingRejected = "rejected"
	BookingReleased = "released"
)

// Captcha purposes, used as part of the captcha storage key.
const (
	CaptchaRegister       = "register"
	CaptchaUpdatePassword = "update_password"
	CaptchaUpdateUser     = "update_user"
)
