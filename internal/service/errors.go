package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrUserFrozen         = errors.New("user is frozen")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrSessionExpired     = errors.New("token expired, please log in again")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrCaptchaInvalid     = errors.New("captcha is wrong or expired")
	ErrEmailMismatch      = errors.New("email does not match the account")
	ErrRoomNotFound       = errors.New("meeting room not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrBookingConflict    = errors.New("meeting room is already booked in this period")
	ErrInvalidTimeRange   = errors.New("end time must be after start time")
	ErrForbidden          = errors.New("not allowed")
)
