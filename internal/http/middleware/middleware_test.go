package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/service"
)

// capHandler - тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs из каждой записи в map[string]any;
//   - не создаёт реальных I/O.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type apiError struct {
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

type errEnvelope struct {
	Error apiError `json:"error"`
}

// stubResolver - управляемая реализация Resolver.
type stubResolver struct {
	user   *models.User
	err    error
	header string
}

func (s *stubResolver) Resolve(_ context.Context, h string) (*models.User, error) {
	s.header = h
	return s.user, s.err
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	chain := Chain(final, m1, m2)
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	var seenID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get(HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	})

	chain := Chain(h, RequestID())
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get(HeaderRequestID)
	require.NotEmpty(t, respID)
	_, err := uuid.Parse(respID)
	require.NoError(t, err)
	require.Equal(t, respID, seenID)
}

func TestRequestID_UseExisting(t *testing.T) {
	const given = "abc123-existing-id"

	chain := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), RequestID())
	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set(HeaderRequestID, given)
	chain.ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get(HeaderRequestID))
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	var hasDeadline bool
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, ok := r.Context().Deadline()
		hasDeadline = ok
		if ok {
			left = time.Until(dl)
		}
		w.WriteHeader(http.StatusOK)
	})

	chain := Chain(h, Timeout(50*time.Millisecond))
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, makeReq("/timeout"))

	require.True(t, hasDeadline)
	require.Greater(t, left, time.Duration(0))
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, _ := r.Context().Deadline()
		childDL = dl
		w.WriteHeader(http.StatusOK)
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := makeReq("/timeout2").WithContext(parent)

	chain := Chain(h, Timeout(1*time.Second)) // больше, чем у родителя
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, req)

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var hasDeadline bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/t0"))
	require.False(t, hasDeadline)
}

func TestTimeout_LimitHit_CauseAndWarning(t *testing.T) {
	h := &capHandler{}

	var cause error
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		cause = context.Cause(r.Context())
	})

	req := makeReq("/contacts")
	req = req.WithContext(log.Into(req.Context(), slog.New(h)))
	Chain(slow, Timeout(10*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), req)

	require.ErrorIs(t, cause, ErrRequestTimeout)
	require.Equal(t, "request_timeout", h.lastMsg)
	require.Equal(t, "/contacts", h.attrs["path"])
	require.Equal(t, 10*time.Millisecond, h.attrs["limit"])
}

func TestTimeout_ParentDeadlineFirst_NoWarning(t *testing.T) {
	h := &capHandler{}

	parent, cancel := context.WithTimeout(log.Into(context.Background(), slog.New(h)), 5*time.Millisecond)
	defer cancel()

	var cause error
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		cause = context.Cause(r.Context())
	})

	Chain(slow, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/contacts").WithContext(parent))

	require.ErrorIs(t, cause, context.DeadlineExceeded)
	require.NotErrorIs(t, cause, ErrRequestTimeout)
	require.Zero(t, h.count)
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	chain := Chain(panicHandler, Recover(), RequestID())
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.Equal(t, "internal error", env.Error.Detail)
	require.NotContains(t, rr.Body.String(), "boom")
	require.Equal(t, rr.Header().Get(HeaderRequestID), env.Error.RequestID)
}

func TestLogging_WritesRecord_WithStatusDurBytesAndRequestID(t *testing.T) {
	h := &capHandler{}
	logger := slog.New(h)

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Не вызываем WriteHeader - статус должен стать 200 после Write.
		_, _ = w.Write([]byte("0123456789")) // 10 байт
	})

	// Порядок важен: RequestID до Logging, чтобы id попал в attrs лога.
	handler := Chain(final, RequestID(), Logging(logger))

	rr := httptest.NewRecorder()
	req := makeReq("/log")
	req.Header.Set(HeaderRequestID, rid)

	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)

	method, _ := h.attrs["method"].(string)
	path, _ := h.attrs["path"].(string)
	status, _ := h.attrs["status"].(int64) // slog хранит числа как int64
	bytes, _ := h.attrs["bytes"].(int64)
	ridAttr, _ := h.attrs["request_id"].(string)

	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "/log", path)
	require.EqualValues(t, http.StatusOK, status)
	require.EqualValues(t, 10, bytes)
	require.Equal(t, rid, ridAttr)

	_, hasDur := h.attrs["dur"]
	require.True(t, hasDur)
}

func TestLogging_StatusDefaults200_WhenNothingWritten(t *testing.T) {
	h := &capHandler{}
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), Logging(slog.New(h)))

	handler.ServeHTTP(httptest.NewRecorder(), makeReq("/empty"))

	status, _ := h.attrs["status"].(int64)
	require.EqualValues(t, http.StatusOK, status)
}

func TestAuthenticate_OK_PutsUserInContext(t *testing.T) {
	res := &stubResolver{user: &models.User{ID: 7, Email: "u@example.com"}}

	var got *models.User
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	})

	rr := httptest.NewRecorder()
	req := makeReq("/contacts")
	req.Header.Set("Authorization", "Bearer abc")
	Chain(h, Authenticate(res)).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Bearer abc", res.header)
	require.NotNil(t, got)
	require.Equal(t, int64(7), got.ID)
}

func TestAuthenticate_Rejected_LogsRedactedHeader(t *testing.T) {
	h := &capHandler{}

	req := makeReq("/contacts")
	req.Header.Set("Authorization", "Bearer secret.jwt.value")
	req = req.WithContext(log.Into(req.Context(), slog.New(h)))

	rr := httptest.NewRecorder()
	Chain(http.NotFoundHandler(), Authenticate(&stubResolver{err: service.ErrInvalidToken})).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "auth_rejected", h.lastMsg)
	require.Equal(t, "Bearer [REDACTED_TOKEN]", h.attrs["authorization"])
	for _, v := range h.attrs {
		if s, ok := v.(string); ok {
			require.NotContains(t, s, "secret.jwt.value")
		}
	}
}

func TestAuthenticate_Failures_DoNotReachHandler(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		wantCode int
		wantAPI  string
	}{
		{"missing", service.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
		{"invalid", service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{"expired", service.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
		{"unknown", service.ErrUnknownUser, http.StatusUnauthorized, "unknown_user"},
		{"storage", errors.New("db down"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

			rr := httptest.NewRecorder()
			Chain(h, Authenticate(&stubResolver{err: tc.err})).ServeHTTP(rr, makeReq("/contacts"))

			require.False(t, called)
			require.Equal(t, tc.wantCode, rr.Code)

			var env errEnvelope
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			require.Equal(t, tc.wantAPI, env.Error.Code)
			if tc.wantCode == http.StatusUnauthorized {
				require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	u, ok := UserFromContext(context.Background())
	require.False(t, ok)
	require.Nil(t, u)
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, p := range []string{"/contacts/1", "/contacts/2"} {
		r.ServeHTTP(httptest.NewRecorder(), makeReq(p))
	}
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/nope"))

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/contacts/{id}", "404")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestStatusWriter_CountsBytes_AndDefaultStatus200(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := newStatusWriter(rr)

	_, _ = sw.Write([]byte("abcd")) // 4 байта

	require.Equal(t, http.StatusOK, sw.status) // статус умолчаний - 200
	require.Equal(t, 4, sw.count)
}
