package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/auth"
	"wedding-seating/internal/export"
	"wedding-seating/internal/lock"
	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAllocator struct {
	calls  int
	dryRun bool
	err    error
}

func (f *fakeAllocator) Run(_ context.Context, dryRun bool) (*seating.Result, error) {
	f.calls++
	f.dryRun = dryRun
	if f.err != nil {
		return nil, f.err
	}
	return &seating.Result{AssignedCount: 2, DryRun: dryRun, Assignments: []seating.Assignment{}}, nil
}

type testServer struct {
	router    *gin.Engine
	store     *storage.Store
	allocator *fakeAllocator
	tokens    *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.Config{Driver: string(storage.DialectSQLite), DSN: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	ts := &testServer{
		store:     store,
		allocator: &fakeAllocator{},
		tokens:    auth.NewTokens("test-secret", time.Hour),
	}
	ts.router = NewRouter(Deps{
		Service:    service.New(store, service.Options{MaxTables: 26}, zerolog.Nop()),
		Allocator:  ts.allocator,
		Tokens:     ts.tokens,
		Passwords:  auth.PasswordChecker{Plain: "letmein"},
		CronSecret: "cron-secret",
		Layout:     export.Layout{Tables: 26, SeatsPerTable: 10},
		Log:        zerolog.Nop(),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) asAdmin(t *testing.T) func(*http.Request) {
	t.Helper()
	token, err := ts.tokens.Sign()
	require.NoError(t, err)
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
}

func bearer(secret string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+secret)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorData      `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_KeepsCallerID(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/healthz", "", func(r *http.Request) {
		r.Header.Set(RequestIDHeader, "abc-123")
	})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestSubmitRSVP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/rsvp", `{"guest_name":"Jane Doe","email":"jane@x.com","attendance":"yes","guest_count":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, decode(t, w).Success)

	w = ts.do(t, http.MethodPost, "/api/rsvp", `{"guest_name":"Jane Doe","email":"jane@x.com","attendance":"no"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rsvps, err := ts.store.ListRSVPs(context.Background())
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	assert.Equal(t, models.AttendanceNo, rsvps[0].Attendance)
}

func TestSubmitRSVP_BadInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"guest_name":`, code: "BAD_REQUEST"},
		{name: "count as string", body: `{"guest_name":"A","attendance":"yes","guest_count":"2"}`, code: "BAD_REQUEST"},
		{name: "missing name", body: `{"attendance":"yes"}`, code: "VALIDATION_ERROR"},
		{name: "bad attendance", body: `{"guest_name":"A","attendance":"maybe"}`, code: "VALIDATION_ERROR"},
		{name: "count too large", body: `{"guest_name":"A","attendance":"yes","guest_count":21}`, code: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/rsvp", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestLookupSeating(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.store.CreateInvitedGuest(ctx, &models.InvitedGuest{GuestName: "Jane Doe", Email: "jane@x.com"}))
	w := ts.do(t, http.MethodPost, "/api/rsvp", `{"guest_name":"Jane Doe","email":"jane@x.com","attendance":"yes"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/seating?email=jane@x.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No seating assignment yet", decode(t, w).Error.Message)

	require.NoError(t, ts.store.CreateSeating(ctx, &models.SeatingAssignment{GuestName: "Jane Doe", Email: "jane@x.com", TableNumber: 4}))
	w = ts.do(t, http.MethodGet, "/api/seating?name=jane", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got service.SeatingLookup
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, 4, got.TableNumber)

	w = ts.do(t, http.MethodGet, "/api/seating?email=nobody@x.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No RSVP found", decode(t, w).Error.Message)

	w = ts.do(t, http.MethodGet, "/api/seating", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutocomplete(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.CreateInvitedGuest(context.Background(), &models.InvitedGuest{GuestName: "Jane Doe"}))

	w := ts.do(t, http.MethodGet, "/api/guests/autocomplete?q=j", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/guests/autocomplete?q=ja&limit=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []service.Suggestion
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].GuestName)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/admin/login", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = ts.do(t, http.MethodPost, "/api/admin/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/login", `{"password":"letmein"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	w = ts.do(t, http.MethodGet, "/api/admin/me", "", func(r *http.Request) { r.AddCookie(cookie) })
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/admin/guests", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/guests", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "forged"})
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/auto-assign-seats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, ts.allocator.calls)
}

func TestAdminGuests(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.asAdmin(t)

	w := ts.do(t, http.MethodPost, "/api/admin/invited-guests", `{"guest_name":"Amy","email":"amy@x.com","allowed_party_size":2}`, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/admin/invited-guests", `{"guest_name":"Other","email":"AMY@x.com"}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode(t, w).Error.Code)

	w = ts.do(t, http.MethodPost, "/api/admin/invited-guests", `{"guest_name":"Big","allowed_party_size":21}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/admin/guest-count", `{"guest_name":"Amy","email":"amy@x.com","guest_count":3}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPut, "/api/admin/guest-count", `{"guest_name":"Nobody","guest_count":3}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/guests", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var listing service.GuestListing
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listing))
	require.Len(t, listing.Guests, 1)
	assert.Equal(t, 3, listing.Guests[0].AllowedPartySize)
	assert.Equal(t, 1, listing.Stats.Pending)
}

func TestAdminRSVPStats(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/rsvp", `{"guest_name":"A","attendance":"yes","guest_count":2}`)
	ts.do(t, http.MethodPost, "/api/rsvp", `{"guest_name":"B","attendance":"no"}`)

	w := ts.do(t, http.MethodGet, "/api/admin/rsvp-stats", "", ts.asAdmin(t))
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.RSVPStats
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, service.RSVPStats{Yes: 2, No: 1, Total: 3}, stats)
}

func TestAdminSeating(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.asAdmin(t)
	row := &models.SeatingAssignment{GuestName: "Amy"}
	require.NoError(t, ts.store.CreateSeating(context.Background(), row))

	w := ts.do(t, http.MethodPut, "/api/admin/seating/abc", `{"table_number":3}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/api/admin/seating/999", `{"table_number":3}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	path := "/api/admin/seating/" + strconv.FormatInt(row.ID, 10)
	w = ts.do(t, http.MethodPut, path, `{"table_number":27}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, path, `{"table_number":3}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/admin/seating", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.SeatingAssignment
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].TableNumber)
}

func TestAdminGuestIdentity(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.asAdmin(t)
	ctx := context.Background()
	require.NoError(t, ts.store.CreateInvitedGuest(ctx, &models.InvitedGuest{GuestName: "Bob", Email: "bob@x.com"}))
	jane := &models.InvitedGuest{GuestName: "Jane", Email: "jane@x.com"}
	require.NoError(t, ts.store.CreateInvitedGuest(ctx, jane))

	path := "/api/admin/invited-guests/" + strconv.FormatInt(jane.ID, 10) + "/identity"
	w := ts.do(t, http.MethodPut, path, `{"guest_name":"Jane","email":"bob@x.com"}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPut, path, `{"guest_name":"Jane Smith"}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got, err := ts.store.GetInvitedGuest(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", got.GuestName)
	assert.Equal(t, "jane@x.com", got.Email)
}

func TestAdminExport(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/admin/seating/export", "", ts.asAdmin(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestAdminAutoAssign(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.asAdmin(t)

	w := ts.do(t, http.MethodPost, "/api/admin/auto-assign-seats?dry_run=true", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, ts.allocator.dryRun)

	w = ts.do(t, http.MethodPost, "/api/admin/auto-assign-seats?dry_run=maybe", "", admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, ts.allocator.calls)
}

func TestCronAutoAssign(t *testing.T) {
	ts := newTestServer(t)

	for _, opt := range []func(*http.Request){
		func(*http.Request) {},
		bearer("wrong"),
		func(r *http.Request) { r.Header.Set("Authorization", "cron-secret") },
	} {
		w := ts.do(t, http.MethodGet, "/api/cron/auto-assign-seats", "", opt)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Zero(t, ts.allocator.calls)

	w := ts.do(t, http.MethodGet, "/api/cron/auto-assign-seats", "", bearer("cron-secret"))
	require.Equal(t, http.StatusOK, w.Code)
	var res seating.Result
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, 2, res.AssignedCount)
	assert.False(t, ts.allocator.dryRun)

	ts.allocator.err = lock.ErrLocked
	w = ts.do(t, http.MethodGet, "/api/cron/auto-assign-seats", "", bearer("cron-secret"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "LOCKED", decode(t, w).Error.Code)
}

func TestInternalErrorSurfacesMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.allocator.err = assert.AnError

	w := ts.do(t, http.MethodGet, "/api/cron/auto-assign-seats", "", bearer("cron-secret"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.Equal(t, assert.AnError.Error(), env.Error.Message)
}

func TestInternalErrorSurfacesDatastoreMessage(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.asAdmin(t)
	require.NoError(t, ts.store.Close())

	w := ts.do(t, http.MethodGet, "/api/admin/guests", "", admin)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "database is closed")
}
