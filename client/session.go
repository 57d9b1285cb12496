package client

import (
	"time"

	"roombook/pkg/logger"

	"go.uber.org/zap"
)

const (
	reasonRefreshRejected = "refresh_rejected"
	reasonRefreshFailed   = "refresh_failed"
)

// Notifier shows an error message to the user.
type Notifier interface {
	Error(msg string)
}

// Navigator sends the user to another page, discarding the current one.
type Navigator interface {
	Navigate(path string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Error(msg string) { f(msg) }

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type logNotifier struct{}

func (logNotifier) Error(msg string) {
	logger.Warn("session error", zap.String("message", msg))
}

type logNavigator struct{}

func (logNavigator) Navigate(path string) {
	logger.Info("login required", zap.String("redirect", path))
}

// terminateSession notifies the user, schedules the login redirect and returns
// the error handed back to the caller.
func (c *Client) terminateSession(reason, payload string, cause error) error {
	sessionTerminations.WithLabelValues(reason).Inc()
	logger.Warn("session terminated",
		zap.String("reason", reason),
		zap.String("payload", payload),
		zap.Error(cause))

	c.notifier.Error(payload)
	loginPath := c.loginPath
	time.AfterFunc(c.redirectDelay, func() {
		c.navigator.Navigate(loginPath)
	})

	return &SessionError{Reason: reason, Message: payload, Err: cause}
}
