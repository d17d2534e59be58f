package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testHTTPProvider(t *testing.T, handler http.Handler) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPProvider(HTTPConfig{BaseURL: srv.URL + "/", ServiceKey: "service-key"})
}

func TestHTTPProviderCreateIdentity(t *testing.T) {
	var got createUserRequest
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/users" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer service-key" {
			t.Errorf("authorization: got %q", auth)
		}
		if key := r.Header.Get("apikey"); key != "service-key" {
			t.Errorf("apikey: got %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "6f1c", "email": got.Email})
	}))

	key, err := p.CreateIdentity(context.Background(), "5551234567@retain.dental", "123456", Metadata{DisplayName: "Sarah Lee", Role: RolePatient, ClinicID: "clinic-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if key != "6f1c" {
		t.Errorf("key: got %q, want %q", key, "6f1c")
	}
	if got.Email != "5551234567@retain.dental" || got.Password != "123456" || !got.EmailConfirm {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.UserMetadata.Role != RolePatient || got.UserMetadata.ClinicID != "clinic-1" || got.UserMetadata.Name != "Sarah Lee" {
		t.Errorf("unexpected metadata: %+v", got.UserMetadata)
	}
}

func TestHTTPProviderCreateIdentityExists(t *testing.T) {
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"code": 422, "error_code": "email_exists", "msg": "A user with this email address has already been registered"})
	}))

	_, err := p.CreateIdentity(context.Background(), "1@retain.dental", "1234", Metadata{})
	if !errors.Is(err, ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}
}

func TestHTTPProviderCreateIdentityServerError(t *testing.T) {
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := p.CreateIdentity(context.Background(), "1@retain.dental", "1234", Metadata{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d", apiErr.StatusCode)
	}
}

func TestHTTPProviderFindIdentityByLoginID(t *testing.T) {
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "5551234567@retain.dental"; r.URL.Query().Get("filter") != want {
			t.Errorf("filter: got %q, want %q", r.URL.Query().Get("filter"), want)
		}
		if got := r.URL.Query().Get("per_page"); got != "50" {
			t.Errorf("per_page: got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{
			{"id": "a", "email": "15551234567@retain.dental"},
			{"id": "b", "email": "5551234567@retain.dental"},
		}})
	}))

	key, err := p.FindIdentityByLoginID(context.Background(), "5551234567@retain.dental")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if key != "b" {
		t.Errorf("key: got %q, want exact match %q", key, "b")
	}
}

func TestHTTPProviderFindIdentityNotFound(t *testing.T) {
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"users": []any{}})
	}))

	if _, err := p.FindIdentityByLoginID(context.Background(), "x@retain.dental"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPProviderDeleteIdentity(t *testing.T) {
	var deleted string
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method: got %s, want DELETE", r.Method)
		}
		if r.URL.Path == "/admin/users/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	if err := p.DeleteIdentity(context.Background(), "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != "/admin/users/abc" {
		t.Errorf("path: got %q", deleted)
	}
	if err := p.DeleteIdentity(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPProviderHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.FindIdentityByLoginID(ctx, "slow@retain.dental")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestHTTPProviderRejectsOversizedResponse(t *testing.T) {
	p := testHTTPProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[],"pad":"`))
		w.Write(bytes.Repeat([]byte("x"), maxResponseBytes))
		w.Write([]byte(`"}`))
	}))

	_, err := p.FindIdentityByLoginID(context.Background(), "5551234567@retain.dental")
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected oversized response error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("oversized response must not read as not found")
	}
}
