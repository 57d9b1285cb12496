package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL       = "http://localhost:3005/"
	DefaultTimeout       = 3000 * time.Millisecond
	DefaultRedirectDelay = time.Second
	DefaultLoginPath     = "/login"
)

// Client talks to the meeting-room booking backend. Every call carries the stored
// access token, and a rejected access token is refreshed once and the call replayed.
// A Client is safe for concurrent use.
type Client struct {
	http *resty.Client

	store         CredentialStore
	notifier      Notifier
	navigator     Navigator
	redirectDelay time.Duration
	loginPath     string
	loc           *time.Location

	timeout   time.Duration
	transport http.RoundTripper
	debug     bool

	refreshGroup singleflight.Group
}

// Result is a decoded backend envelope together with the transport status.
type Result[T any] struct {
	StatusCode int
	Header     http.Header
	Code       int
	Message    string
	Data       T
}

// call describes one backend request. It is rebuilt into a fresh HTTP request on replay.
type call struct {
	method     string
	path       string
	pathParams map[string]string
	query      url.Values
	body       any
	retried    bool
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url cannot be empty")
	}

	c := &Client{
		store:         NewMemoryStore(),
		notifier:      logNotifier{},
		navigator:     logNavigator{},
		redirectDelay: DefaultRedirectDelay,
		loginPath:     DefaultLoginPath,
		loc:           time.Local,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(c.timeout).
		SetLogger(logger.Sugar()).
		SetDebug(c.debug).
		OnBeforeRequest(c.attachBearer)
	if c.transport != nil {
		c.http.SetTransport(c.transport)
	}

	return c, nil
}

// attachBearer sets the Authorization header from the stored access token, if any.
func (c *Client) attachBearer(_ *resty.Client, r *resty.Request) error {
	token, err := c.store.Get(r.Context(), constraints.AccessTokenKey)
	if err != nil {
		logger.Warn("failed to read access token", zap.Error(err))
		return nil
	}
	if token != "" {
		r.SetHeader("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, cl call) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if len(cl.pathParams) > 0 {
		req.SetPathParams(cl.pathParams)
	}
	if len(cl.query) > 0 {
		req.SetQueryParamsFromValues(cl.query)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		requestsTotal.WithLabelValues(cl.path, outcomeTransportError).Inc()
		return nil, &TransportError{Method: cl.method, Path: cl.path, Err: err}
	}
	return resp, nil
}

// do sends cl and resolves authentication failures:
//   - a 401 outside the refresh endpoint triggers one refresh and one replay;
//   - a 400/401 from the refresh endpoint itself ends the session;
//   - everything else is returned to the caller as-is.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	resp, err := c.execute(ctx, cl)
	if err != nil {
		return nil, err
	}
	if resp.IsSuccess() {
		requestsTotal.WithLabelValues(cl.path, outcomeSuccess).Inc()
		return resp, nil
	}

	rerr := newResponseError(cl, resp)
	code, ok := rerr.BusinessCode()
	onRefreshPath := strings.Contains(cl.path, constraints.PathRefresh)

	switch {
	case ok && code == constraints.CodeUnauthorized && !onRefreshPath && !cl.retried:
		requestsTotal.WithLabelValues(cl.path, outcomeRefresh).Inc()
		logger.Debug("access token rejected, refreshing", zap.String("path", cl.path))
		if _, err := c.RefreshToken(ctx); err != nil {
			return nil, err
		}
		cl.retried = true
		return c.do(ctx, cl)
	case ok && onRefreshPath && (code == constraints.CodeBadRequest || code == constraints.CodeUnauthorized):
		requestsTotal.WithLabelValues(cl.path, outcomeError).Inc()
		return nil, c.terminateSession(reasonRefreshRejected, rerr.Payload(), rerr)
	default:
		requestsTotal.WithLabelValues(cl.path, outcomeError).Inc()
		return nil, rerr
	}
}

func send[T any](ctx context.Context, c *Client, cl call) (*Result[T], error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	return decodeResult[T](cl, resp)
}

func decodeResult[T any](cl call, resp *resty.Response) (*Result[T], error) {
	res := &Result[T]{StatusCode: resp.StatusCode(), Header: resp.Header()}
	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return res, nil
	}

	var env v1.Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", cl.method, cl.path, err)
	}
	res.Code = env.Code
	res.Message = env.Message
	res.Data = env.Data
	return res, nil
}
