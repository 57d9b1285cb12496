package api

import (
	"context"
	"net/http"

	"roombook/internal/dto/resp"
	"roombook/internal/metrics"
	"roombook/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowOrigins []string
	Auth         middleware.Authenticator
	// CaptchaLimiter throttles every captcha endpoint.
	CaptchaLimiter *middleware.RateLimiter
	// Health reports whether the storage backends are reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

func RegisterRoutes(userHandler *UserHandler, bookingHandler *BookingHandler, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.CorsMiddleware(cfg.AllowOrigins),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
	)
	_ = r.SetTrustedProxies(nil)

	r.GET("/health", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				resp.Fail(c, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		resp.OK(c, http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	captchaLimit := cfg.CaptchaLimiter.Middleware()
	auth := middleware.JWTMiddleware(cfg.Auth)

	user := r.Group("/user")
	{
		user.POST("/login", userHandler.Login)
		user.GET("/refresh", userHandler.Refresh)
		user.GET("/register-captcha", captchaLimit, userHandler.RegisterCaptcha)
		user.POST("/register", userHandler.Register)
		user.GET("/update_password/captcha", captchaLimit, userHandler.UpdatePasswordCaptcha)
		user.POST("/update_password", userHandler.UpdatePassword)
	}

	userProtected := r.Group("/user")
	userProtected.Use(auth)
	{
		userProtected.GET("/info", userHandler.Info)
		userProtected.POST("/update", userHandler.Update)
		userProtected.GET("/update/captcha", captchaLimit, userHandler.UpdateCaptcha)
	}

	rooms := r.Group("/meeting-room")
	rooms.Use(auth)
	{
		rooms.GET("/list", bookingHandler.MeetingRoomList)
	}

	booking := r.Group("/booking")
	booking.Use(auth)
	{
		booking.GET("/list", bookingHandler.List)
		booking.POST("/add", bookingHandler.Add)
		booking.GET("/unbind/:id", bookingHandler.Unbind)
	}
	return r
}
