package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	lookupPageSize   = 50
	maxResponseBytes = 1 << 20
)

// HTTPConfig holds credentials for a hosted auth service exposing a
// GoTrue-compatible admin API.
type HTTPConfig struct {
	BaseURL    string
	ServiceKey string
}

// HTTPProvider manages identities through the hosted auth service's admin API.
type HTTPProvider struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewHTTPProvider creates an admin API client. Per-call deadlines come from
// the caller's context; the client timeout is only a backstop.
func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateIdentity registers a pre-confirmed user whose email is the login identifier.
func (p *HTTPProvider) CreateIdentity(ctx context.Context, loginID, credential string, meta Metadata) (string, error) {
	payload := createUserRequest{
		Email:        loginID,
		Password:     credential,
		EmailConfirm: true,
		UserMetadata: userMetadata{Name: meta.DisplayName, Role: meta.Role, ClinicID: meta.ClinicID},
	}

	body, err := p.doJSON(ctx, http.MethodPost, p.baseURL+"/admin/users", payload)
	if err != nil {
		if isExistsError(err) {
			return "", ErrIdentityExists
		}
		return "", fmt.Errorf("create identity: %w", err)
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("create identity: unmarshal: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create identity: response missing id")
	}
	return resp.ID, nil
}

// DeleteIdentity removes a user by key.
func (p *HTTPProvider) DeleteIdentity(ctx context.Context, key string) error {
	if _, err := p.doJSON(ctx, http.MethodDelete, p.baseURL+"/admin/users/"+url.PathEscape(key), nil); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// FindIdentityByLoginID searches users by email and returns the exact match.
// The filter is a substring search and only the first page of results is
// checked, so a login identifier matched by more than lookupPageSize users
// can be missed.
func (p *HTTPProvider) FindIdentityByLoginID(ctx context.Context, loginID string) (string, error) {
	u := fmt.Sprintf("%s/admin/users?filter=%s&per_page=%d", p.baseURL, url.QueryEscape(loginID), lookupPageSize)

	body, err := p.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("find identity: %w", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("find identity: unmarshal: %w", err)
	}
	for _, user := range resp.Users {
		if strings.EqualFold(user.Email, loginID) {
			return user.ID, nil
		}
	}
	return "", ErrNotFound
}

func (p *HTTPProvider) doJSON(ctx context.Context, method, u string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)
	req.Header.Set("apikey", p.serviceKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("read response: body exceeds %d bytes", maxResponseBytes)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var wire apiErrorResponse
		if json.Unmarshal(body, &wire) == nil {
			apiErr.Code = wire.code()
			if msg := wire.message(); msg != "" {
				apiErr.Message = msg
			}
		}
		return nil, apiErr
	}

	return body, nil
}

func isExistsError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusConflict {
		return true
	}
	switch apiErr.Code {
	case "email_exists", "user_already_exists":
		return true
	}
	return apiErr.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(apiErr.Message), "already")
}

// APIError represents an error returned by the auth service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity api: %s (code %s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("identity api: %s (status %d)", e.Message, e.StatusCode)
}

// json wire types

type userMetadata struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	ClinicID string `json:"clinic_id"`
}

type createUserRequest struct {
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	EmailConfirm bool         `json:"email_confirm"`
	UserMetadata userMetadata `json:"user_metadata"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
}

type apiErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Msg       string `json:"msg"`
	Message   string `json:"message"`
}

func (r apiErrorResponse) code() string { return r.ErrorCode }

func (r apiErrorResponse) message() string {
	if r.Msg != "" {
		return r.Msg
	}
	return r.Message
}
