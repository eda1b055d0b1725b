// Package client talks to the check-in API. Submissions are validated against
// the local form registry before anything is sent.
package client

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
	"sync"
	"time"

	"daily-checkin/internal/entry"
	"daily-checkin/internal/model"
	"daily-checkin/internal/schema"
)

type Client struct {
	baseURL  string
	http     *http.Client
	registry *schema.Registry

	mu    sync.Mutex
	token string
}

// APIError is a non-2xx response that is not a form validation failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		registry: schema.Default(),
		token:    token,
	}
}

// Token returns the bearer token in use, including any renewal the server sent.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", model.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp, nil
}

func (c *Client) Signup(ctx context.Context, email, password, name string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	body := model.SignupRequest{Email: email, Password: password, Name: name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/signup", body, &resp); err != nil {
		return nil, err
	}
	c.setToken(resp.Token)
	return &resp, nil
}

func (c *Client) Me(ctx context.Context) (*model.CurrentUser, error) {
	var resp model.CurrentUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Today(ctx context.Context) ([]model.TodayStatus, error) {
	var resp []model.TodayStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/today", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Forms(ctx context.Context) ([]model.FormInfo, error) {
	var resp []model.FormInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/forms", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Entry fetches one day's entry. An empty date means today; uid is the
// caregiver override and may be empty.
func (c *Client) Entry(ctx context.Context, t entry.FormType, date, uid string) (*model.EntryResponse, error) {
	if _, err := entry.ParseFormType(string(t)); err != nil {
		return nil, err
	}
	q := url.Values{}
	setIf(q, "date", date)
	setIf(q, "uid", uid)
	var resp model.EntryResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/entries/"+string(t), q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) History(ctx context.Context, t entry.FormType, w entry.Window, uid string) (*model.HistoryResponse, error) {
	if _, err := entry.ParseFormType(string(t)); err != nil {
		return nil, err
	}
	q := url.Values{"type": {string(t)}}
	setIf(q, "window", string(w))
	setIf(q, "uid", uid)
	var resp model.HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/api/history", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit sends today's form through the submitTrackingForm call.
func (c *Client) Submit(ctx context.Context, t entry.FormType, form schema.Payload) (*model.SubmitResponse, error) {
	if _, err := entry.ParseFormType(string(t)); err != nil {
		return nil, err
	}
	norm, err := c.registry.Validate(t, form)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	var resp model.SubmitResponse
	body := model.SubmitRequest{Type: string(t), Form: raw}
	if err := c.doJSON(ctx, http.MethodPost, "/api/submitTrackingForm", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if fresh := resp.Header.Get("X-New-Token"); fresh != "" {
		c.setToken(fresh)
	}

	data, err := io.ReadAll(resp.Body)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if json.Unmarshal(data, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}
	if status == http.StatusUnprocessableEntity && body.Field != "" {
		return &schema.ValidationError{Field: body.Field, Message: body.Error}
	}
	return &APIError{Status: status, Message: body.Error}
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == status
}

func setIf(q url.Values, k, v string) {
	if v != "" {
		q.Set(k, v)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
