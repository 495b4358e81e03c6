package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/pkg/lifecycle"
)

type fakeVerifier struct {
	principal auth.Principal
	err       error
}

func (f *fakeVerifier) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (auth.Principal, error) {
	if f.err != nil {
		return auth.Principal{}, f.err
	}
	return f.principal, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthenticateNoHeaderProceedsAnonymously(t *testing.T) {
	sys := &fakeVerifier{err: auth.ErrInvalidToken}

	var captured auth.Principal
	handler := auth.Authenticate(sys, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/contributions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !captured.Anonymous() {
		t.Errorf("principal = %+v, want anonymous", captured)
	}
}

func TestAuthenticateInvalidTokenRejected(t *testing.T) {
	sys := &fakeVerifier{err: auth.ErrInvalidToken}

	called := false
	handler := auth.Authenticate(sys, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/contributions", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("next handler called for invalid token")
	}
}

func TestAuthenticateNotReadyRejectedUnavailable(t *testing.T) {
	sys := &fakeVerifier{err: auth.ErrNotReady}

	handler := auth.Authenticate(sys, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/contributions", nil)
	req.Header.Set("Authorization", "Bearer token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestAuthenticateValidTokenAttachesPrincipal(t *testing.T) {
	want := auth.Principal{ID: uuid.New(), Subject: "subject", Role: auth.RoleAdmin}
	sys := &fakeVerifier{principal: want}

	var captured auth.Principal
	handler := auth.Authenticate(sys, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/contributions", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != want {
		t.Errorf("principal = %+v, want %+v", captured, want)
	}
}

func TestRequirePrincipal(t *testing.T) {
	t.Run("anonymous caller gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/contributions", nil)

		_, ok := auth.RequirePrincipal(rec, req, discardLogger())
		if ok {
			t.Error("RequirePrincipal = true for anonymous caller")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("authenticated caller passes", func(t *testing.T) {
		want := auth.Principal{ID: uuid.New(), Role: auth.RoleUser}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/contributions", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), want))

		got, ok := auth.RequirePrincipal(rec, req, discardLogger())
		if !ok {
			t.Fatal("RequirePrincipal = false for authenticated caller")
		}
		if got != want {
			t.Errorf("principal = %+v, want %+v", got, want)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("anonymous caller gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/stats/overview", nil)

		if _, ok := auth.RequireAdmin(rec, req, discardLogger()); ok {
			t.Error("RequireAdmin = true for anonymous caller")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/stats/overview", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{
			ID:   uuid.New(),
			Role: auth.RoleUser,
		}))

		if _, ok := auth.RequireAdmin(rec, req, discardLogger()); ok {
			t.Error("RequireAdmin = true for non-admin")
		}
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		admin := auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/stats/overview", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), admin))

		got, ok := auth.RequireAdmin(rec, req, discardLogger())
		if !ok {
			t.Fatal("RequireAdmin = false for admin")
		}
		if got != admin {
			t.Errorf("principal = %+v, want %+v", got, admin)
		}
	})
}

func TestBearerTokenParsing(t *testing.T) {
	want := auth.Principal{ID: uuid.New(), Role: auth.RoleUser}
	sys := &fakeVerifier{principal: want}

	tests := []struct {
		name          string
		header        string
		wantPrincipal bool
	}{
		{"standard bearer", "Bearer token", true},
		{"case-insensitive scheme", "bearer token", true},
		{"missing scheme treated as anonymous", "token", false},
		{"wrong scheme treated as anonymous", "Basic dXNlcjpwYXNz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured auth.Principal
			handler := auth.Authenticate(sys, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = auth.FromContext(r.Context())
			}))

			req := httptest.NewRequest("GET", "/contributions", nil)
			req.Header.Set("Authorization", tt.header)

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got := !captured.Anonymous(); got != tt.wantPrincipal {
				t.Errorf("authenticated = %v, want %v", got, tt.wantPrincipal)
			}
		})
	}
}
