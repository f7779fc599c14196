package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/questions"
)

// Client is a Go SDK for the interview-engine API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new interview-engine client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListOptions contains options for listing sessions
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

// StartSession creates a new interview session
func (c *Client) StartSession(ctx context.Context, req models.StartSessionRequest) (*models.StartSessionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                         `json:"success"`
		Data    *models.StartSessionResponse `json:"data"`
		Error   *apiError                    `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// Ingest submits a measurement sample to a session. The returned
// response carries the updated aggregate snapshot and the current
// warning list, or Dropped=true when the session was not accepting.
func (c *Client) Ingest(ctx context.Context, sessionID string, rec models.MeasurementRecord) (*models.IngestResponse, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/sessions/%s/measurements", sessionID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                   `json:"success"`
		Data    *models.IngestResponse `json:"data"`
		Error   *apiError              `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// PauseSession pauses an active session
func (c *Client) PauseSession(ctx context.Context, sessionID string) error {
	return c.postStatus(ctx, sessionID, "pause")
}

// ResumeSession resumes a paused session
func (c *Client) ResumeSession(ctx context.Context, sessionID string) error {
	return c.postStatus(ctx, sessionID, "resume")
}

func (c *Client) postStatus(ctx context.Context, sessionID, verb string) error {
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/sessions/%s/%s", sessionID, verb), nil)
	if err != nil {
		return err
	}

	var result struct {
		Success bool      `json:"success"`
		Error   *apiError `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return nil
}

// Advance moves the session's question cursor by delta positions
func (c *Client) Advance(ctx context.Context, sessionID string, delta int) (*models.AdvanceResponse, error) {
	body, err := json.Marshal(models.AdvanceRequest{Delta: delta})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/sessions/%s/advance", sessionID), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                    `json:"success"`
		Data    *models.AdvanceResponse `json:"data"`
		Error   *apiError               `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// EndSession completes a session and returns the final report.
// Ending an already completed session returns the same report.
func (c *Client) EndSession(ctx context.Context, sessionID string) (*models.Report, error) {
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/sessions/%s/end", sessionID), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool           `json:"success"`
		Data    *models.Report `json:"data"`
		Error   *apiError      `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// GetSession retrieves a session summary by ID
func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/sessions/%s", sessionID), nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool                   `json:"success"`
		Data    *models.SessionSummary `json:"data"`
		Error   *apiError              `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data, nil
}

// ListSessions retrieves a list of session summaries
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) ([]*models.SessionSummary, error) {
	path := "/api/v1/sessions?"
	if opts.Status != "" {
		path += fmt.Sprintf("status=%s&", opts.Status)
	}
	if opts.Limit > 0 {
		path += fmt.Sprintf("limit=%d&", opts.Limit)
	}
	if opts.Offset > 0 {
		path += fmt.Sprintf("offset=%d&", opts.Offset)
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Sessions []*models.SessionSummary `json:"sessions"`
			Total    int                      `json:"total"`
		} `json:"data"`
		Error *apiError `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.Sessions, nil
}

// ListQuestionSets retrieves all available question sets
func (c *Client) ListQuestionSets(ctx context.Context) ([]*questions.Set, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/question-sets", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			QuestionSets []*questions.Set `json:"question_sets"`
			Total        int              `json:"total"`
		} `json:"data"`
		Error *apiError `json:"error"`
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("API error: %s - %s", result.Error.Code, result.Error.Message)
	}

	return result.Data.QuestionSets, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
