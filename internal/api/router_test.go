package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roombook/client"
	"roombook/internal/metrics"
	"roombook/internal/middleware"
	"roombook/internal/repository"
	"roombook/internal/service"
	v1 "roombook/pkg/api/v1"
	"roombook/pkg/constraints"
	"roombook/pkg/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

type testBackend struct {
	store  *repository.MemoryStore
	router *gin.Engine
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	store := repository.NewMemoryStore()
	obs := metrics.NewPrometheusObserver()

	authSvc := service.NewAuthService(store.Users(), store.Sessions(), obs, "test-key", time.Minute, time.Hour)
	userSvc := service.NewUserService(store.Users(), store.Captchas(), obs, time.Minute)
	roomSvc := service.NewMeetingRoomService(store.MeetingRooms())
	bookingSvc := service.NewBookingService(store.Bookings(), store.MeetingRooms(), obs)
	if err := roomSvc.SeedDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}

	router := RegisterRoutes(
		NewUserHandler(authSvc, userSvc),
		NewBookingHandler(roomSvc, bookingSvc),
		RouterConfig{
			Auth:           authSvc,
			CaptchaLimiter: middleware.NewRateLimiter(nil, "ratelimit:captcha:", 100, 100),
		},
	)
	return &testBackend{store: store, router: router}
}

func (b *testBackend) captcha(t *testing.T, purpose, address string) string {
	t.Helper()
	code, err := b.store.Captchas().Get(context.Background(), purpose, address)
	if err != nil {
		t.Fatalf("no captcha for %s: %v", address, err)
	}
	return code
}

func (b *testBackend) do(method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) v1.RawEnvelope {
	t.Helper()
	var env v1.RawEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("body is not an envelope: %s", w.Body.String())
	}
	return env
}

func TestRoutes_Envelopes(t *testing.T) {
	b := newTestBackend(t)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantData string
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantCode: 200, wantData: `"ok"`},
		{name: "guarded route without token", method: http.MethodGet, target: constraints.PathUserInfo, wantCode: 401},
		{name: "booking list without token", method: http.MethodGet, target: constraints.PathBookingList, wantCode: 401},
		{name: "login bad body", method: http.MethodPost, target: constraints.PathLogin, body: `{"username":""}`, wantCode: 400},
		{name: "login unknown user", method: http.MethodPost, target: constraints.PathLogin, body: `{"username":"x","password":"y"}`, wantCode: 400, wantData: `"wrong username or password"`},
		{name: "refresh without token", method: http.MethodGet, target: constraints.PathRefresh, wantCode: 400},
		{name: "refresh with garbage", method: http.MethodGet, target: constraints.PathRefresh + "?refresh_token=garbage", wantCode: 401, wantData: `"token expired, please log in again"`},
		{name: "captcha needs an email", method: http.MethodGet, target: constraints.PathRegisterCaptcha + "?address=nope", wantCode: 400},
		{name: "register with unknown captcha", method: http.MethodPost, target: constraints.PathRegister,
			body:     `{"username":"a","nickName":"A","password":"secret1","email":"a@example.com","captcha":"xxxxxx"}`,
			wantCode: 400, wantData: `"captcha is wrong or expired"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := b.do(tt.method, tt.target, tt.body, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			env := decodeEnvelope(t, w)
			if env.Code != tt.wantCode {
				t.Errorf("envelope code = %d, want %d", env.Code, tt.wantCode)
			}
			wantMsg := constraints.MessageSuccess
			if tt.wantCode >= 400 {
				wantMsg = constraints.MessageFail
			}
			if env.Message != wantMsg {
				t.Errorf("message = %q, want %q", env.Message, wantMsg)
			}
			if tt.wantData != "" && string(env.Data) != tt.wantData {
				t.Errorf("data = %s, want %s", env.Data, tt.wantData)
			}
		})
	}
}

func TestRoutes_CaptchaRateLimited(t *testing.T) {
	b := newTestBackend(t)
	b.router = RegisterRoutes(
		NewUserHandler(nil, service.NewUserService(b.store.Users(), b.store.Captchas(), metrics.NewPrometheusObserver(), time.Minute)),
		NewBookingHandler(nil, nil),
		RouterConfig{
			Auth:           service.NewAuthService(b.store.Users(), b.store.Sessions(), metrics.NewPrometheusObserver(), "k", time.Minute, time.Hour),
			CaptchaLimiter: middleware.NewRateLimiter(nil, "ratelimit:captcha:", 1, 1),
		},
	)

	first := b.do(http.MethodGet, constraints.PathRegisterCaptcha+"?address=a@example.com", "", "")
	second := b.do(http.MethodGet, constraints.PathRegisterCaptcha+"?address=a@example.com", "", "")
	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("codes = %d, %d; want 200, 429", first.Code, second.Code)
	}
}

// TestClientAgainstBackend drives the API client against the real router.
func TestClientAgainstBackend(t *testing.T) {
	b := newTestBackend(t)
	srv := httptest.NewServer(b.router)
	defer srv.Close()

	ctx := context.Background()
	store := client.NewMemoryStore()
	redirects := make(chan string, 1)
	var notified []string
	c, err := client.New(srv.URL+"/",
		client.WithCredentialStore(store),
		client.WithRedirectDelay(0),
		client.WithLocation(time.UTC),
		client.WithNotifier(client.NotifierFunc(func(msg string) { notified = append(notified, msg) })),
		client.WithNavigator(client.NavigatorFunc(func(path string) { redirects <- path })),
	)
	if err != nil {
		t.Fatal(err)
	}

	// Register and log in.
	if _, err := c.RegisterCaptcha(ctx, "zs@example.com"); err != nil {
		t.Fatalf("RegisterCaptcha: %v", err)
	}
	_, err = c.Register(ctx, v1.RegisterUser{
		Username: "zhangsan", NickName: "Zhang", Password: "secret1", Email: "zs@example.com",
		Captcha: b.captcha(t, constraints.CaptchaRegister, "zs@example.com"),
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := c.Login(ctx, "zhangsan", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Data.UserInfo.Username != "zhangsan" {
		t.Errorf("login user = %+v", login.Data.UserInfo)
	}

	info, err := c.GetUserInfo(ctx)
	if err != nil || info.Data.Email != "zs@example.com" {
		t.Fatalf("GetUserInfo = %+v, %v", info, err)
	}

	// Profile update with a captcha mailed to the user's own address.
	if _, err := c.UpdateUserInfoCaptcha(ctx); err != nil {
		t.Fatalf("UpdateUserInfoCaptcha: %v", err)
	}
	_, err = c.UpdateInfo(ctx, v1.UpdateUser{
		NickName: "Zhang San", Email: "zs@example.com",
		Captcha: b.captcha(t, constraints.CaptchaUpdateUser, "zs@example.com"),
	})
	if err != nil {
		t.Fatalf("UpdateInfo: %v", err)
	}

	// Book a seeded room.
	rooms, err := c.SearchMeetingRooms(ctx, "Earth", 0, "", 1, 10)
	if err != nil || len(rooms.Data.MeetingRooms) != 1 {
		t.Fatalf("SearchMeetingRooms = %+v, %v", rooms, err)
	}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	booking := client.CreateBooking{
		MeetingRoomID:  rooms.Data.MeetingRooms[0].ID,
		RangeStartDate: day,
		RangeStartTime: day.Add(9 * time.Hour),
		RangeEndDate:   day,
		RangeEndTime:   day.Add(10 * time.Hour),
		Note:           "planning",
	}
	if _, err := c.BookingAdd(ctx, booking); err != nil {
		t.Fatalf("BookingAdd: %v", err)
	}
	_, err = c.BookingAdd(ctx, booking)
	var rerr *client.ResponseError
	if !errors.As(err, &rerr) || rerr.StatusCode != http.StatusBadRequest {
		t.Fatalf("double booking: err = %v", err)
	}

	list, err := c.BookingList(ctx, client.SearchBooking{RangeStartDate: day}, 1, 10)
	if err != nil || list.Data.TotalCount != 1 {
		t.Fatalf("BookingList = %+v, %v", list, err)
	}
	if got := list.Data.Bookings[0]; got.User.NickName != "Zhang San" || got.Note != "planning" {
		t.Errorf("booking = %+v", got)
	}

	// An access token the backend no longer accepts is refreshed transparently.
	if err := store.Set(ctx, constraints.AccessTokenKey, "expired"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Unbind(ctx, list.Data.Bookings[0].ID); err != nil {
		t.Fatalf("Unbind after refresh: %v", err)
	}
	if access, _ := store.Get(ctx, constraints.AccessTokenKey); access == "expired" || access == "" {
		t.Errorf("access token was not refreshed: %q", access)
	}

	// A rejected refresh token ends the session.
	if err := store.Set(ctx, constraints.AccessTokenKey, "expired"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, constraints.RefreshTokenKey, "revoked"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetUserInfo(ctx); !client.IsSessionTerminated(err) {
		t.Fatalf("expected session termination, got %v", err)
	}
	select {
	case path := <-redirects:
		if path != client.DefaultLoginPath {
			t.Errorf("redirect = %q", path)
		}
	case <-time.After(time.Second):
		t.Fatal("no redirect")
	}
	if len(notified) != 1 || notified[0] != "token expired, please log in again" {
		t.Errorf("notifications = %v", notified)
	}
	if access, _ := store.Get(ctx, constraints.AccessTokenKey); access != "" {
		t.Errorf("access token not cleared: %q", access)
	}
}
