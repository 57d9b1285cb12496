package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTimeout bounds every request, connection and body read included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithCredentialStore replaces the default in-memory token store.
func WithCredentialStore(s CredentialStore) Option {
	return func(c *Client) error {
		if s == nil {
			return errors.New("credential store cannot be nil")
		}
		c.store = s
		return nil
	}
}

// WithNotifier sets where user-facing session errors are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Client) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		c.notifier = n
		return nil
	}
}

// WithNavigator sets who performs the redirect to the login page.
func WithNavigator(n Navigator) Option {
	return func(c *Client) error {
		if n == nil {
			return errors.New("navigator cannot be nil")
		}
		c.navigator = n
		return nil
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("redirect delay must be >= 0")
		}
		c.redirectDelay = d
		return nil
	}
}

func WithLoginPath(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return errors.New("login path cannot be empty")
		}
		c.loginPath = path
		return nil
	}
}

// WithLocation sets the time zone booking dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) error {
		if loc == nil {
			return errors.New("location cannot be nil")
		}
		c.loc = loc
		return nil
	}
}

// WithTransport swaps the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.transport = rt
		return nil
	}
}

// WithDebug logs every request and response through the package logger.
// It prints headers, bearer tokens included; keep it off outside development.
func WithDebug(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}
