package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =========================================================================
// REQUEST ID TESTS
// =========================================================================

// idProbe records the request ID the wrapped handler observed.
type idProbe struct {
	id string
}

func (p *idProbe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.id = RequestIDFromContext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	probe := &idProbe{}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()

	RequestID(probe).ServeHTTP(rec, req)

	if probe.id == "" {
		t.Fatal("no request ID in context")
	}
	if got := rec.Header().Get("X-Request-Id"); got != probe.id {
		t.Errorf("response header = %q, context ID = %q, want them equal", got, probe.id)
	}
}

func TestRequestID_KeepsClientSupplied(t *testing.T) {
	probe := &idProbe{}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")
	rec := httptest.NewRecorder()

	RequestID(probe).ServeHTTP(rec, req)

	if probe.id != "client-supplied-id" {
		t.Errorf("context ID = %q, want the client's", probe.id)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "client-supplied-id" {
		t.Errorf("response header = %q, want the client's", got)
	}
}

func TestRequestID_DistinctPerRequest(t *testing.T) {
	probe := &idProbe{}
	handler := RequestID(probe)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	first := probe.id
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if first == probe.id {
		t.Errorf("two requests got the same generated ID %q", first)
	}
}

func TestRequestIDFromContext_Absent(t *testing.T) {
	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("RequestIDFromContext() = %q on a bare context, want empty", id)
	}
}

// =========================================================================
// LOGGER TESTS
// =========================================================================

// captureLog runs a request through RequestID + Logger and returns the log
// output.
func captureLog(t *testing.T, handler http.HandlerFunc, req *http.Request) string {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	chain := RequestID(Logger(logger)(handler))
	chain.ServeHTTP(httptest.NewRecorder(), req)

	return buf.String()
}

func TestLogger_RecordsRequestLine(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("teapot"))
	}

	out := captureLog(t, handler, httptest.NewRequest(http.MethodGet, "/profile", nil))

	for _, want := range []string{
		"request completed",
		"method=GET",
		"path=/profile",
		"status=418",
		"bytes=6",
		"requestID=",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q:\n%s", want, out)
		}
	}
}

func TestLogger_DefaultsStatusTo200(t *testing.T) {
	// A handler that writes a body without calling WriteHeader implicitly
	// sends 200; the log must say so rather than 0.
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}

	out := captureLog(t, handler, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(out, "status=200") {
		t.Errorf("log line missing status=200:\n%s", out)
	}
}

func TestLogger_DoesNotLogAuthorizationHeader(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer super-secret-token")

	out := captureLog(t, handler, req)

	if strings.Contains(out, "super-secret-token") {
		t.Errorf("log line leaks the bearer token:\n%s", out)
	}
}
