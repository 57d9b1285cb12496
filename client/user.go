package client

import (
	"context"
	"net/http"
	"net/url"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
)

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*Result[v1.LoginUserVo], error) {
	res, err := send[v1.LoginUserVo](ctx, c, call{
		method: http.MethodPost,
		path:   constraints.PathLogin,
		body:   v1.LoginUser{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	if res.Data.AccessToken != "" {
		if err := c.saveCredentials(ctx, res.Data.AccessToken, res.Data.RefreshToken); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Logout forgets the stored token pair. The backend keeps no session to close.
func (c *Client) Logout(ctx context.Context) error {
	return c.saveCredentials(ctx, "", "")
}

// RegisterCaptcha asks the backend to mail a registration captcha to email.
func (c *Client) RegisterCaptcha(ctx context.Context, email string) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathRegisterCaptcha,
		query:  url.Values{"address": {email}},
	})
}

func (c *Client) Register(ctx context.Context, user v1.RegisterUser) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodPost,
		path:   constraints.PathRegister,
		body:   user,
	})
}

func (c *Client) UpdatePasswordCaptcha(ctx context.Context, email string) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathUpdatePasswordCaptcha,
		query:  url.Values{"address": {email}},
	})
}

func (c *Client) UpdatePassword(ctx context.Context, data v1.UpdatePassword) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodPost,
		path:   constraints.PathUpdatePassword,
		body:   data,
	})
}

// GetUserInfo returns the profile of the logged-in user.
func (c *Client) GetUserInfo(ctx context.Context) (*Result[v1.UserInfo], error) {
	return send[v1.UserInfo](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathUserInfo,
	})
}

func (c *Client) UpdateInfo(ctx context.Context, data v1.UpdateUser) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodPost,
		path:   constraints.PathUpdateUser,
		body:   data,
	})
}

// UpdateUserInfoCaptcha mails a captcha to the logged-in user's address.
func (c *Client) UpdateUserInfoCaptcha(ctx context.Context) (*Result[string], error) {
	return send[string](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathUpdateUserCaptcha,
	})
}
