package api

import (
	"context"
	"net/http"

	"roombook/internal/dto/req"
	"roombook/internal/dto/resp"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"

	"github.com/gin-gonic/gin"
)

type AuthProvider interface {
	Login(ctx context.Context, req v1.LoginUser) (*v1.LoginUserVo, error)
	Refresh(ctx context.Context, refreshToken string) (*v1.RefreshToken, error)
}

type UserProvider interface {
	SendCaptcha(ctx context.Context, purpose, address string) error
	SendUpdateCaptcha(ctx context.Context, userID uint64) error
	Register(ctx context.Context, req v1.RegisterUser) error
	UpdatePassword(ctx context.Context, req v1.UpdatePassword) error
	Info(ctx context.Context, userID uint64) (*v1.UserInfo, error)
	Update(ctx context.Context, userID uint64, req v1.UpdateUser) error
}

type UserHandler struct {
	auth  AuthProvider
	users UserProvider
}

func NewUserHandler(auth AuthProvider, users UserProvider) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func (h *UserHandler) Login(c *gin.Context) {
	var body v1.LoginUser
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	vo, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, vo)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var q req.RefreshQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), q.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, tokens)
}

func (h *UserHandler) RegisterCaptcha(c *gin.Context) {
	h.sendCaptcha(c, constraints.CaptchaRegister)
}

func (h *UserHandler) UpdatePasswordCaptcha(c *gin.Context) {
	h.sendCaptcha(c, constraints.CaptchaUpdatePassword)
}

func (h *UserHandler) sendCaptcha(c *gin.Context, purpose string) {
	var q req.CaptchaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.SendCaptcha(c.Request.Context(), purpose, q.Address); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "captcha sent")
}

func (h *UserHandler) Register(c *gin.Context) {
	var body v1.RegisterUser
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.Register(c.Request.Context(), body); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, constraints.MessageSuccess)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var body v1.UpdatePassword
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), body); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, constraints.MessageSuccess)
}

func (h *UserHandler) Info(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	info, err := h.users.Info(c.Request.Context(), op.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, info)
}

func (h *UserHandler) Update(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	var body v1.UpdateUser
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.users.Update(c.Request.Context(), op.UserID, body); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, constraints.MessageSuccess)
}

func (h *UserHandler) UpdateCaptcha(c *gin.Context) {
	op, ok := operator(c)
	if !ok {
		return
	}
	if err := h.users.SendUpdateCaptcha(c.Request.Context(), op.UserID); err != nil {
		fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "captcha sent")
}
