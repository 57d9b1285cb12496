package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"roombook/internal/metrics"
	"roombook/internal/model"
	"roombook/internal/repository"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const captchaLength = 6

type UserService struct {
	users      repository.UserInterface
	captchas   repository.CaptchaInterface
	observer   metrics.Observer
	captchaTTL time.Duration
}

func NewUserService(users repository.UserInterface, captchas repository.CaptchaInterface, observer metrics.Observer, captchaTTL time.Duration) *UserService {
	return &UserService{
		users:      users,
		captchas:   captchas,
		observer:   observer,
		captchaTTL: captchaTTL,
	}
}

// SendCaptcha stores a fresh code for purpose and address. There is no mailer
// in development; the code goes to the log.
func (s *UserService) SendCaptcha(ctx context.Context, purpose, address string) error {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:captchaLength]
	if err := s.captchas.Save(ctx, purpose, address, code, s.captchaTTL); err != nil {
		return err
	}
	s.observer.RecordCaptcha(purpose)
	logger.Info("captcha issued",
		zap.String("purpose", purpose),
		zap.String("address", address),
		zap.String("code", code))
	return nil
}

// SendUpdateCaptcha mails a profile-update captcha to the user's own address.
func (s *UserService) SendUpdateCaptcha(ctx context.Context, userID uint64) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.SendCaptcha(ctx, constraints.CaptchaUpdateUser, user.Email)
}

func (s *UserService) Register(ctx context.Context, req v1.RegisterUser) error {
	if err := s.checkCaptcha(ctx, constraints.CaptchaRegister, req.Email, req.Captcha); err != nil {
		return err
	}

	_, err := s.users.FindByUsername(ctx, req.Username)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &model.User{
		Username: req.Username,
		Password: string(hash),
		NickName: req.NickName,
		Email:    req.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.dropCaptcha(ctx, constraints.CaptchaRegister, req.Email)
	logger.Info("user registered", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, req v1.UpdatePassword) error {
	if err := s.checkCaptcha(ctx, constraints.CaptchaUpdatePassword, req.Email, req.Captcha); err != nil {
		return err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.Email != req.Email {
		return ErrEmailMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.dropCaptcha(ctx, constraints.CaptchaUpdatePassword, req.Email)
	return nil
}

func (s *UserService) Info(ctx context.Context, userID uint64) (*v1.UserInfo, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// Update changes the nickname and avatar. Empty fields are kept.
func (s *UserService) Update(ctx context.Context, userID uint64, req v1.UpdateUser) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != req.Email {
		return ErrEmailMismatch
	}
	if err := s.checkCaptcha(ctx, constraints.CaptchaUpdateUser, req.Email, req.Captcha); err != nil {
		return err
	}

	if req.NickName != "" {
		user.NickName = req.NickName
	}
	if req.HeadPic != "" {
		user.HeadPic = req.HeadPic
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.dropCaptcha(ctx, constraints.CaptchaUpdateUser, req.Email)
	return nil
}

func (s *UserService) findUser(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) checkCaptcha(ctx context.Context, purpose, address, code string) error {
	stored, err := s.captchas.Get(ctx, purpose, address)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCaptchaInvalid
	}
	if err != nil {
		return err
	}
	if !strings.EqualFold(stored, code) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *UserService) dropCaptcha(ctx context.Context, purpose, address string) {
	if err := s.captchas.Delete(ctx, purpose, address); err != nil {
		logger.Warn("failed to delete used captcha", zap.String("purpose", purpose), zap.Error(err))
	}
}

func toUserInfo(u *model.User) v1.UserInfo {
	return v1.UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		NickName:    u.NickName,
		Email:       u.Email,
		HeadPic:     u.HeadPic,
		PhoneNumber: u.PhoneNumber,
		IsFrozen:    u.IsFrozen,
		IsAdmin:     u.IsAdmin,
		CreateTime:  u.CreatedAt,
	}
}
