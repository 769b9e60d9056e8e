package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(config.GatewayConfig{
		BaseURL:      server.URL,
		ServiceToken: "service-token",
	})
}

func TestHTTPClientListUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/admin-backend/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer service-token" {
			t.Errorf("missing service credential: %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode([]models.User{
			{UUID: "u1", Email: "user@example.com", Name: "User One"},
		})
	})

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || users[0].UUID != "u1" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestHTTPClientListEnrollmentsUnwrapsData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin-backend/courses/enrollments" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"role":"STUDENT","userId":"u1","course":{"id":"c7","title":"Algebra"}}]}`))
	})

	enrollments, err := client.ListEnrollments(context.Background())
	if err != nil {
		t.Fatalf("list enrollments failed: %v", err)
	}
	if len(enrollments) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(enrollments))
	}
	if enrollments[0].UserID != "u1" || enrollments[0].Course.Title != "Algebra" {
		t.Fatalf("unexpected enrollment: %+v", enrollments[0])
	}
}

func TestHTTPClientSetUserLockRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPatch {
			t.Errorf("unexpected method: %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SetUserLock(context.Background(), "u1", true); err != nil {
		t.Fatalf("set user lock failed: %v", err)
	}
	if gotPath != "/admin-backend/users/u1/lock-status" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if locked, ok := gotBody["locked"]; !ok || !locked {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestHTTPClientSetEnrollmentRoleRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SetEnrollmentRole(context.Background(), "7", "u1", "TEACHER"); err != nil {
		t.Fatalf("set enrollment role failed: %v", err)
	}
	if gotPath != "/admin-backend/courses/7/enrollments/u1" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBody["role"] != "TEACHER" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestHTTPClientTranslates404(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.SetUserLock(context.Background(), "missing", true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPClientTranslatesBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.ListUsers(context.Background())
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", upstream.Status)
	}
}

func TestHTTPClientTimeoutBecomesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(config.GatewayConfig{
		BaseURL:      server.URL,
		ServiceToken: "service-token",
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.ListUsers(ctx)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != 0 {
		t.Fatalf("transport failure should carry status 0, got %d", upstream.Status)
	}
}

func TestMockSetUserLock(t *testing.T) {
	mock := NewMock(map[string]*models.User{
		"u1": {UUID: "u1", Email: "user@example.com"},
	}, nil)

	if err := mock.SetUserLock(context.Background(), "unknown", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}

	if err := mock.SetUserLock(context.Background(), "u1", true); err != nil {
		t.Fatalf("set user lock failed: %v", err)
	}
	users, err := mock.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || !users[0].AccountLockedByAdmins {
		t.Fatalf("lock not reflected: %+v", users)
	}
}

func TestMockSetEnrollmentRole(t *testing.T) {
	mock := NewMock(nil, map[string]map[string]*models.Enrollment{
		"u1": {
			"7": {Role: "STUDENT", UserID: "u1", Course: models.Course{ID: "7", Title: "Algebra"}},
		},
	})

	if err := mock.SetEnrollmentRole(context.Background(), "7", "unknown", "TEACHER"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: expected ErrNotFound, got %v", err)
	}
	if err := mock.SetEnrollmentRole(context.Background(), "8", "u1", "TEACHER"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown course: expected ErrNotFound, got %v", err)
	}

	if err := mock.SetEnrollmentRole(context.Background(), "7", "u1", "TEACHER"); err != nil {
		t.Fatalf("set role failed: %v", err)
	}
	enrollments, err := mock.ListEnrollments(context.Background())
	if err != nil {
		t.Fatalf("list enrollments failed: %v", err)
	}
	if len(enrollments) != 1 || enrollments[0].Role != "TEACHER" {
		t.Fatalf("role not reflected: %+v", enrollments)
	}
}
