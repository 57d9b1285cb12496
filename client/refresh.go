package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"

	"go.uber.org/zap"
)

// RefreshToken exchanges the stored refresh token for a new pair and stores it.
// Concurrent callers share one request. Any failure clears the stored pair and
// ends the session.
func (c *Client) RefreshToken(ctx context.Context) (*Result[v1.RefreshToken], error) {
	// The refresh outlives whichever caller happened to start it.
	ctx = context.WithoutCancel(ctx)

	v, err, shared := c.refreshGroup.Do(constraints.PathRefresh, func() (any, error) {
		return c.refreshToken(ctx)
	})
	if shared {
		logger.Debug("joined in-flight token refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Result[v1.RefreshToken]), nil
}

func (c *Client) refreshToken(ctx context.Context) (*Result[v1.RefreshToken], error) {
	refreshToken, err := c.store.Get(ctx, constraints.RefreshTokenKey)
	if err != nil {
		logger.Warn("failed to read refresh token", zap.Error(err))
	}

	res, err := send[v1.RefreshToken](ctx, c, call{
		method: http.MethodGet,
		path:   constraints.PathRefresh,
		query:  url.Values{"refresh_token": {refreshToken}},
	})
	if err != nil {
		refreshTotal.WithLabelValues("failed").Inc()
		c.clearCredentials(ctx)
		if errors.Is(err, ErrSessionTerminated) {
			return nil, err
		}
		return nil, c.terminateSession(reasonRefreshFailed, failurePayload(err), err)
	}

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		refreshTotal.WithLabelValues("failed").Inc()
		c.clearCredentials(ctx)
		return nil, c.terminateSession(reasonRefreshFailed, fmt.Sprintf("unexpected refresh status %d", res.StatusCode), nil)
	}
	if res.Data.AccessToken == "" {
		refreshTotal.WithLabelValues("failed").Inc()
		c.clearCredentials(ctx)
		return nil, c.terminateSession(reasonRefreshFailed, "refresh response carried no access token", nil)
	}

	if err := c.saveCredentials(ctx, res.Data.AccessToken, res.Data.RefreshToken); err != nil {
		refreshTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	refreshTotal.WithLabelValues("succeeded").Inc()
	logger.Info("access token refreshed")
	return res, nil
}
