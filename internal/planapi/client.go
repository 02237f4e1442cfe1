package planapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/weeklyplan/internal/models"
)

// Backend is the plan service contract. The service owns all plan state;
// callers re-read after every mutation.
type Backend interface {
	ActiveProgram(ctx context.Context) (*models.Program, error)
	DeleteWorkout(ctx context.Context, workoutID int64) error
	AdaptPlan(ctx context.Context, plan *models.Program, request string) (*models.AdaptResponse, error)
}

// StatusError is returned when the plan service answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("planapi: %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsStatus reports whether err (or anything it wraps) is a *StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Client implements Backend by calling the plan service REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: Client satisfies Backend.
var _ Backend = (*Client)(nil)

// NewClient creates a Client targeting the given base URL. A zero timeout
// leaves requests bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the normalized service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("planapi: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("planapi: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planapi: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("planapi: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}
	return respBody, nil
}

// ActiveProgram fetches the user's current program.
func (c *Client) ActiveProgram(ctx context.Context) (*models.Program, error) {
	body, err := c.do(ctx, http.MethodGet, "/active-program", nil)
	if err != nil {
		return nil, err
	}
	p, err := models.ParseProgram(body)
	if err != nil {
		return nil, fmt.Errorf("planapi: %w", err)
	}
	return p, nil
}

// DeleteWorkout removes a workout day. The response body is ignored.
func (c *Client) DeleteWorkout(ctx context.Context, workoutID int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/workout/"+strconv.FormatInt(workoutID, 10), nil)
	return err
}

// AdaptPlan sends the full current plan and a free-text edit request.
func (c *Client) AdaptPlan(ctx context.Context, plan *models.Program, request string) (*models.AdaptResponse, error) {
	body, err := c.do(ctx, http.MethodPost, "/adapt-plan", models.AdaptRequest{
		CurrentPlan: plan,
		UserRequest: request,
	})
	if err != nil {
		return nil, err
	}

	var resp models.AdaptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("planapi: decode adapt response: %w", err)
	}
	return &resp, nil
}
