package api

import (
	"errors"
	"net/http"

	"roombook/internal/dto/resp"
	"roombook/internal/service"

	"github.com/gin-gonic/gin"
)

// fail maps a service error to its envelope. Unknown errors are logged by the
// request logger and reported without detail.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionExpired), errors.Is(err, service.ErrTokenInvalid):
		resp.Fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		resp.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrBookingNotFound):
		resp.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserFrozen),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCaptchaInvalid),
		errors.Is(err, service.ErrEmailMismatch),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrBookingConflict):
		resp.Fail(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		resp.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func badRequest(c *gin.Context, err error) {
	resp.Fail(c, http.StatusBadRequest, err.Error())
}

// operator returns the authenticated caller; JWTMiddleware guarantees one on
// guarded routes.
func operator(c *gin.Context) (*service.OperatorInfo, bool) {
	op := service.GetOperatorInfo(c.Request.Context())
	if op == nil {
		resp.Fail(c, http.StatusUnauthorized, "login required")
		return nil, false
	}
	return op, true
}
