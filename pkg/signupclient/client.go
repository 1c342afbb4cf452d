package signupclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/tendant/simple-signup/pkg/errors"
	"github.com/tendant/simple-signup/pkg/signup"
)

const (
	DefaultSignupPath = "/api/auth/signup"
	RequestIDHeader   = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Options holds the plain settings of a Client. It mirrors the client section
// of the application config.
type Options struct {
	BaseURL    string
	SignupPath string
	UserAgent  string
}

// Client submits signup drafts to a remote authentication service. Every
// Submit is exactly one HTTP request; the client never retries and imposes
// no timeout of its own.
type Client struct {
	baseURL    string
	signupPath string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func New(baseURL string, opts ...Option) *Client {
	return NewWithOptions(Options{BaseURL: baseURL}, opts...)
}

func NewWithOptions(o Options, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(o.BaseURL, "/"),
		signupPath: o.SignupPath,
		userAgent:  o.UserAgent,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	if c.signupPath == "" {
		c.signupPath = DefaultSignupPath
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithSignupPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.signupPath = path
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// URL returns the signup endpoint the client posts to.
func (c *Client) URL() string {
	return c.baseURL + "/" + strings.TrimLeft(c.signupPath, "/")
}

// Submit posts the draft. On failure the error is always a
// *signup.SubmissionError whose Problem is already normalized.
func (c *Client) Submit(ctx context.Context, d signup.Draft) (signup.User, error) {
	requestID := uuid.New().String()
	logger := c.logger.With("request_id", requestID)
	logger.Info("Starting signup request", "username", d.Username, "email", d.Email)

	body, err := json.Marshal(NewSignupRequest(d))
	if err != nil {
		return signup.User{}, &signup.SubmissionError{
			Problem: signup.MessageProblem(signup.MessageSignupFailed),
			Err:     apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode signup request"),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		logger.Error("Failed to build signup request", "url", c.URL(), "error", err)
		return signup.User{}, &signup.SubmissionError{
			Problem: signup.MessageProblem(signup.MessageNetworkError),
			Err:     apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to build signup request"),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Signup request failed, no response", "error", err)
		return signup.User{}, &signup.SubmissionError{Problem: signup.MessageProblem(signup.MessageNetworkError), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Error("Failed to read signup response", "status", resp.StatusCode, "error", err)
		return signup.User{}, &signup.SubmissionError{
			Problem:    signup.MessageProblem(signup.MessageNetworkError),
			StatusCode: resp.StatusCode,
			Err:        apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read signup response"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		problem := NormalizeFailure(raw)
		logger.Error("Signup request failed", "status", resp.StatusCode, "problem", problem)
		return signup.User{}, &signup.SubmissionError{Problem: problem, StatusCode: resp.StatusCode}
	}

	var out SignupResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.User == nil {
		if err == nil {
			err = errors.New("response has no user")
		}
		logger.Error("Unexpected signup response", "status", resp.StatusCode, "error", err)
		return signup.User{}, &signup.SubmissionError{
			Problem:    signup.MessageProblem(signup.MessageSignupFailed),
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	logger.Info("Signup request successful", "status", resp.StatusCode, "user", *out.User)
	return *out.User, nil
}
