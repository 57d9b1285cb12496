package main

import (
	"context"
	"fmt"

	v1 "roombook/pkg/api/v1"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.Login(ctx, username, password)
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s\n", res.Data.UserInfo.Username)
				return res.Data.UserInfo, nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				return nil, s.Logout(ctx)
			})
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				if _, err := s.RefreshToken(ctx); err != nil {
					return nil, err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "tokens refreshed")
				return nil, nil
			})
		},
	}
}

func newRegisterCaptchaCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register-captcha",
		Short: "Send a registration captcha to an email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.RegisterCaptcha(ctx, email)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var user v1.RegisterUser

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.Register(ctx, user)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&user.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&user.NickName, "nickname", "n", "", "Display name (required)")
	cmd.Flags().StringVarP(&user.Password, "password", "p", "", "Password, at least 6 characters (required)")
	cmd.Flags().StringVarP(&user.Email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVar(&user.Captcha, "captcha", "", "Captcha from register-captcha (required)")
	for _, f := range []string{"username", "nickname", "password", "email", "captcha"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPasswordCaptchaCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "password-captcha",
		Short: "Send a password reset captcha",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.UpdatePasswordCaptcha(ctx, email)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUpdatePasswordCmd() *cobra.Command {
	var form v1.UpdatePassword

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Reset a password with a captcha",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.UpdatePassword(ctx, form)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Email address on the account (required)")
	cmd.Flags().StringVar(&form.Captcha, "captcha", "", "Captcha from password-captcha (required)")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "New password (required)")
	for _, f := range []string{"username", "email", "captcha", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.GetUserInfo(ctx)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
}

func newUpdateCaptchaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-captcha",
		Short: "Send a profile update captcha to your own address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.UpdateUserInfoCaptcha(ctx)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var form v1.UpdateUser

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, s *session) (any, error) {
				res, err := s.UpdateInfo(ctx, form)
				if err != nil {
					return nil, err
				}
				return res.Data, nil
			})
		},
	}
	cmd.Flags().StringVarP(&form.NickName, "nickname", "n", "", "New display name")
	cmd.Flags().StringVar(&form.HeadPic, "head-pic", "", "New avatar URL")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Email address on the account (required)")
	cmd.Flags().StringVar(&form.Captcha, "captcha", "", "Captcha from update-captcha (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("captcha")
	return cmd
}
