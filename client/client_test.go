package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"
)

func init() {
	logger.InitLogger("test")
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	msg := constraints.MessageSuccess
	if status >= 400 {
		msg = constraints.MessageFail
	}
	_ = json.NewEncoder(w).Encode(v1.Envelope[any]{Code: status, Message: msg, Data: data})
}

// sessionRecorder captures notifications and redirects.
type sessionRecorder struct {
	mu        sync.Mutex
	messages  []string
	redirects chan string
}

func newSessionRecorder() *sessionRecorder {
	return &sessionRecorder{redirects: make(chan string, 4)}
}

func (r *sessionRecorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *sessionRecorder) Navigate(path string) {
	r.redirects <- path
}

func (r *sessionRecorder) notified() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) (*Client, *MemoryStore, *sessionRecorder) {
	t.Helper()
	store := NewMemoryStore()
	rec := newSessionRecorder()
	base := []Option{
		WithCredentialStore(store),
		WithNotifier(rec),
		WithNavigator(rec),
		WithRedirectDelay(0),
	}
	c, err := New(srv.URL, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, store, rec
}

func seedTokens(t *testing.T, store CredentialStore, access, refresh string) {
	t.Helper()
	ctx := context.Background()
	if err := store.Set(ctx, constraints.AccessTokenKey, access); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, constraints.RefreshTokenKey, refresh); err != nil {
		t.Fatal(err)
	}
}

func storedTokens(t *testing.T, store CredentialStore) (string, string) {
	t.Helper()
	ctx := context.Background()
	access, _ := store.Get(ctx, constraints.AccessTokenKey)
	refresh, _ := store.Get(ctx, constraints.RefreshTokenKey)
	return access, refresh
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := New("http://localhost", WithTimeout(0)); err == nil {
		t.Fatal("expected error for zero timeout")
	}
	if _, err := New("http://localhost", WithCredentialStore(nil)); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := New("http://localhost", WithRedirectDelay(-time.Second)); err == nil {
		t.Fatal("expected error for negative redirect delay")
	}
}

func TestAttachBearer(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "token stored", token: "abc", want: "Bearer abc"},
		{name: "no token stored", token: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				writeEnvelope(w, http.StatusOK, v1.UserInfo{ID: 1})
			}))
			defer srv.Close()

			c, store, _ := newTestClient(t, srv)
			seedTokens(t, store, tt.token, "")

			if _, err := c.GetUserInfo(context.Background()); err != nil {
				t.Fatalf("GetUserInfo() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Authorization = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRefreshAndRetry(t *testing.T) {
	var infoCalls, refreshCalls int32
	var gotRefreshParam string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constraints.PathUserInfo:
			atomic.AddInt32(&infoCalls, 1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeEnvelope(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, http.StatusOK, v1.UserInfo{ID: 7, Username: "zhangsan"})
		case constraints.PathRefresh:
			atomic.AddInt32(&refreshCalls, 1)
			gotRefreshParam = r.URL.Query().Get("refresh_token")
			writeEnvelope(w, http.StatusOK, v1.RefreshToken{AccessToken: "fresh", RefreshToken: "fresh-r"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, store, rec := newTestClient(t, srv)
	seedTokens(t, store, "stale", "r1")

	res, err := c.GetUserInfo(context.Background())
	if err != nil {
		t.Fatalf("GetUserInfo() error: %v", err)
	}
	if res.StatusCode != http.StatusOK || res.Data.Username != "zhangsan" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if infoCalls != 2 || refreshCalls != 1 {
		t.Errorf("calls: info=%d refresh=%d, want 2 and 1", infoCalls, refreshCalls)
	}
	if gotRefreshParam != "r1" {
		t.Errorf("refresh_token param = %q, want r1", gotRefreshParam)
	}
	if access, refresh := storedTokens(t, store); access != "fresh" || refresh != "fresh-r" {
		t.Errorf("stored tokens = %q/%q, want fresh/fresh-r", access, refresh)
	}
	if msgs := rec.notified(); len(msgs) != 0 {
		t.Errorf("unexpected notifications: %v", msgs)
	}
}

func TestRefreshAndRetry_ReplaysBody(t *testing.T) {
	var bodies []v1.UpdateUser
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constraints.PathUpdateUser:
			var body v1.UpdateUser
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			bodies = append(bodies, body)
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeEnvelope(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeEnvelope(w, http.StatusCreated, "success")
		case constraints.PathRefresh:
			writeEnvelope(w, http.StatusOK, v1.RefreshToken{AccessToken: "fresh", RefreshToken: "r2"})
		}
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv)
	seedTokens(t, store, "stale", "r1")

	want := v1.UpdateUser{NickName: "Zhang", Email: "z@example.com", Captcha: "abc123"}
	res, err := c.UpdateInfo(context.Background(), want)
	if err != nil {
		t.Fatalf("UpdateInfo() error: %v", err)
	}
	if res.Data != "success" {
		t.Errorf("data = %q, want success", res.Data)
	}
	if len(bodies) != 2 || bodies[0] != want || bodies[1] != want {
		t.Errorf("bodies = %+v, want the same body twice", bodies)
	}
}

func TestRefreshFailure_ClearsTokens(t *testing.T) {
	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constraints.PathUserInfo:
			writeEnvelope(w, http.StatusUnauthorized, "token expired")
		case constraints.PathRefresh:
			atomic.AddInt32(&refreshCalls, 1)
			writeEnvelope(w, http.StatusInternalServerError, "redis unavailable")
		}
	}))
	defer srv.Close()

	c, store, rec := newTestClient(t, srv)
	seedTokens(t, store, "stale", "r1")

	_, err := c.GetUserInfo(context.Background())
	if !IsSessionTerminated(err) {
		t.Fatalf("expected session termination, got %v", err)
	}
	var se *SessionError
	if !errors.As(err, &se) || se.Reason != reasonRefreshFailed {
		t.Errorf("unexpected session error: %#v", err)
	}
	if access, refresh := storedTokens(t, store); access != "" || refresh != "" {
		t.Errorf("stored tokens = %q/%q, want both empty", access, refresh)
	}
	if msgs := rec.notified(); len(msgs) != 1 || msgs[0] != "redis unavailable" {
		t.Errorf("notifications = %v, want [redis unavailable]", msgs)
	}
	select {
	case path := <-rec.redirects:
		if path != DefaultLoginPath {
			t.Errorf("redirect = %q, want %q", path, DefaultLoginPath)
		}
	case <-time.After(time.Second):
		t.Fatal("redirect was not scheduled")
	}
	if refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls)
	}
}

func TestRefreshRejected_NoRecursion(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			var infoCalls, refreshCalls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case constraints.PathUserInfo:
					atomic.AddInt32(&infoCalls, 1)
					writeEnvelope(w, http.StatusUnauthorized, "token expired")
				case constraints.PathRefresh:
					atomic.AddInt32(&refreshCalls, 1)
					writeEnvelope(w, code, "please log in again")
				}
			}))
			defer srv.Close()

			c, store, rec := newTestClient(t, srv)
			seedTokens(t, store, "stale", "bad")

			_, err := c.GetUserInfo(context.Background())
			var se *SessionError
			if !errors.As(err, &se) || se.Reason != reasonRefreshRejected {
				t.Fatalf("expected refresh_rejected session error, got %v", err)
			}
			if infoCalls != 1 || refreshCalls != 1 {
				t.Errorf("calls: info=%d refresh=%d, want 1 and 1", infoCalls, refreshCalls)
			}
			if msgs := rec.notified(); len(msgs) != 1 || msgs[0] != "please log in again" {
				t.Errorf("notifications = %v, want one with the payload", msgs)
			}
			if access, refresh := storedTokens(t, store); access != "" || refresh != "" {
				t.Errorf("stored tokens = %q/%q, want both empty", access, refresh)
			}
			select {
			case <-rec.redirects:
			case <-time.After(time.Second):
				t.Fatal("redirect was not scheduled")
			}
		})
	}
}

func TestRefreshToken_DirectRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "refresh token expired")
	}))
	defer srv.Close()

	c, store, rec := newTestClient(t, srv)
	seedTokens(t, store, "a", "r")

	if _, err := c.RefreshToken(context.Background()); !IsSessionTerminated(err) {
		t.Fatalf("expected session termination, got %v", err)
	}
	if msgs := rec.notified(); len(msgs) != 1 {
		t.Errorf("notifications = %v, want exactly one", msgs)
	}
}

func TestTerminateSession_DefaultRedirectDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "refresh token revoked")
	}))
	defer srv.Close()

	store := NewMemoryStore()
	rec := newSessionRecorder()
	c, err := New(srv.URL, WithCredentialStore(store), WithNotifier(rec), WithNavigator(rec))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.redirectDelay != DefaultRedirectDelay || DefaultRedirectDelay != time.Second {
		t.Fatalf("redirect delay = %v, want 1s", c.redirectDelay)
	}
	seedTokens(t, store, "a", "r")

	start := time.Now()
	if _, err := c.RefreshToken(context.Background()); !IsSessionTerminated(err) {
		t.Fatalf("expected session termination, got %v", err)
	}
	if msgs := rec.notified(); len(msgs) != 1 || msgs[0] != "refresh token revoked" {
		t.Errorf("notifications = %v", msgs)
	}

	select {
	case path := <-rec.redirects:
		t.Fatalf("redirect to %q after %v, before the delay", path, time.Since(start))
	case <-time.After(800 * time.Millisecond):
	}
	select {
	case path := <-rec.redirects:
		if path != DefaultLoginPath {
			t.Errorf("redirect = %q, want %q", path, DefaultLoginPath)
		}
		if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
			t.Errorf("redirect after %v, want about 1s", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no redirect after the default delay")
	}
}

func TestRetriedCall_UnauthorizedAgain(t *testing.T) {
	var infoCalls, refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constraints.PathUserInfo:
			atomic.AddInt32(&infoCalls, 1)
			writeEnvelope(w, http.StatusUnauthorized, "token expired")
		case constraints.PathRefresh:
			atomic.AddInt32(&refreshCalls, 1)
			writeEnvelope(w, http.StatusOK, v1.RefreshToken{AccessToken: "fresh", RefreshToken: "r2"})
		}
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv)
	seedTokens(t, store, "stale", "r1")

	_, err := c.GetUserInfo(context.Background())
	var rerr *ResponseError
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 ResponseError, got %v", err)
	}
	if infoCalls != 2 || refreshCalls != 1 {
		t.Errorf("calls: info=%d refresh=%d, want 2 and 1", infoCalls, refreshCalls)
	}
}

func TestResponseError_PassThrough(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantPayload string
		wantCode    int
		hasPayload  bool
	}{
		{
			name:        "business error with envelope",
			status:      http.StatusNotFound,
			body:        `{"code":404,"message":"fail","data":"meeting room not found"}`,
			wantPayload: "meeting room not found",
			wantCode:    404,
			hasPayload:  true,
		},
		{
			name:        "structured data",
			status:      http.StatusUnprocessableEntity,
			body:        `{"code":422,"message":"fail","data":{"field":"email"}}`,
			wantPayload: `{"field":"email"}`,
			wantCode:    422,
			hasPayload:  true,
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream down",
			wantPayload: "upstream down",
			hasPayload:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _, rec := newTestClient(t, srv)
			_, err := c.SearchMeetingRooms(context.Background(), "", 0, "", 1, 10)

			var rerr *ResponseError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected ResponseError, got %v", err)
			}
			if rerr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", rerr.StatusCode, tt.status)
			}
			if rerr.HasPayload() != tt.hasPayload {
				t.Errorf("HasPayload() = %v, want %v", rerr.HasPayload(), tt.hasPayload)
			}
			if code, _ := rerr.BusinessCode(); code != tt.wantCode {
				t.Errorf("BusinessCode() = %d, want %d", code, tt.wantCode)
			}
			if got := rerr.Payload(); got != tt.wantPayload {
				t.Errorf("Payload() = %q, want %q", got, tt.wantPayload)
			}
			if string(rerr.Body) != tt.body {
				t.Errorf("Body = %q, want %q", rerr.Body, tt.body)
			}
			if msgs := rec.notified(); len(msgs) != 0 {
				t.Errorf("unexpected notifications: %v", msgs)
			}
		})
	}
}

func TestBadRequestOutsideRefresh_IsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "wrong username or password")
	}))
	defer srv.Close()

	c, store, rec := newTestClient(t, srv)
	_, err := c.Login(context.Background(), "zhangsan", "nope")

	var rerr *ResponseError
	if !errors.As(err, &rerr) || rerr.Payload() != "wrong username or password" {
		t.Fatalf("expected 400 ResponseError, got %v", err)
	}
	if IsSessionTerminated(err) {
		t.Error("a failed login must not end the session")
	}
	if msgs := rec.notified(); len(msgs) != 0 {
		t.Errorf("unexpected notifications: %v", msgs)
	}
	if access, _ := storedTokens(t, store); access != "" {
		t.Errorf("access token = %q, want empty", access)
	}
}

func TestTransportError(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		c, _, _ := newTestClient(t, srv)
		_, err := c.GetUserInfo(context.Background())
		var terr *TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if terr.Path != constraints.PathUserInfo {
			t.Errorf("Path = %q", terr.Path)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		c, _, _ := newTestClient(t, srv, WithTimeout(50*time.Millisecond))
		_, err := c.GetUserInfo(context.Background())
		var terr *TransportError
		if !errors.As(err, &terr) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if !terr.Timeout() {
			t.Errorf("Timeout() = false for %v", terr)
		}
	})
}

func TestConcurrentUnauthorized_SharesRefresh(t *testing.T) {
	const callers = 5
	var refreshCalls int32
	var staleArrivals int32
	allStale := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case constraints.PathUserInfo:
			if r.Header.Get("Authorization") == "Bearer fresh" {
				writeEnvelope(w, http.StatusOK, v1.UserInfo{ID: 1})
				return
			}
			if atomic.AddInt32(&staleArrivals, 1) == callers {
				close(allStale)
			}
			<-allStale
			writeEnvelope(w, http.StatusUnauthorized, "token expired")
		case constraints.PathRefresh:
			atomic.AddInt32(&refreshCalls, 1)
			time.Sleep(300 * time.Millisecond)
			writeEnvelope(w, http.StatusOK, v1.RefreshToken{AccessToken: "fresh", RefreshToken: "r2"})
		}
	}))
	defer srv.Close()

	c, store, _ := newTestClient(t, srv, WithTimeout(5*time.Second))
	seedTokens(t, store, "stale", "r1")

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetUserInfo(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("GetUserInfo() error: %v", err)
		}
	}
	if refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshCalls)
	}
}
