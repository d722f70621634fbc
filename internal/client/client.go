// Package client is a typed HTTP client for the survey API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/internal/models"
)

// Client calls the survey API. It is safe for concurrent use once the token is set.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent on authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL (e.g. http://localhost:4000).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) { c.token = token }

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string, name *string) (*models.TokenResponse, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if name != nil {
		body["name"] = *name
	}
	var res models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	var res models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context) (*models.UserPublic, error) {
	var u models.UserPublic
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Questions returns the catalog.
func (c *Client) Questions(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	err := c.do(ctx, http.MethodGet, "/api/questions", nil, &qs)
	return qs, err
}

// Answers returns the caller's stored answers.
func (c *Client) Answers(ctx context.Context) ([]models.Answer, error) {
	var as []models.Answer
	err := c.do(ctx, http.MethodGet, "/api/answers", nil, &as)
	return as, err
}

// SubmitAnswer upserts the caller's answer to one question.
func (c *Client) SubmitAnswer(ctx context.Context, questionID int64, optionID *int64, freeAnswer *string) (models.UpsertResult, error) {
	in := models.AnswerInput{QuestionID: &questionID, OptionID: optionID, FreeAnswer: freeAnswer}
	var res models.UpsertResult
	err := c.do(ctx, http.MethodPost, "/api/answers", in, &res)
	return res, err
}

// Counts returns the non-zero per-option counts of a question.
func (c *Client) Counts(ctx context.Context, questionID int64) ([]models.AnswerCount, error) {
	q := url.Values{"question_id": {strconv.FormatInt(questionID, 10)}}
	var counts []models.AnswerCount
	err := c.do(ctx, http.MethodGet, "/api/answer_counts?"+q.Encode(), nil, &counts)
	return counts, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Persistence("cannot reach survey server", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperr.Persistence("read response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Persistence("decode response", err)
	}
	return nil
}

// statusError maps an error response back to the apperr kind the server used.
func statusError(status int, body []byte) error {
	var eb struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	switch status {
	case http.StatusBadRequest:
		return apperr.Validation(msg)
	case http.StatusUnauthorized:
		return apperr.Unauthorized(msg)
	case http.StatusForbidden:
		return apperr.Forbidden(msg)
	case http.StatusNotFound:
		return apperr.NotFound(msg)
	case http.StatusConflict:
		return apperr.Conflict(msg)
	default:
		return &apperr.Error{Kind: apperr.KindPersistence, Message: msg, Err: fmt.Errorf("status %d", status)}
	}
}
