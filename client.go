package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Doer executes HTTP requests. *http.Client satisfies it; tests plug in the
// sessiontest backend. Timeouts and retries are the Doer's concern, not the
// session core's.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIClient is the default AuthAPI implementation over the backend's REST
// auth endpoints.
type APIClient struct {
	baseURL string
	client  Doer
	logger  Logger
}

var _ AuthAPI = (*APIClient)(nil)

// NewAPIClient returns an AuthAPI for the configured backend.
func NewAPIClient(cfg Config) *APIClient {
	timeout := time.Duration(cfg.GetRequestTimeout()) * time.Second

	return &APIClient{
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  defLogger{},
	}
}

// WithDoer replaces the underlying HTTP client.
func (c *APIClient) WithDoer(doer Doer) *APIClient {
	if doer != nil {
		c.client = doer
	}
	return c
}

func (c *APIClient) WithLogger(logger Logger) *APIClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Login calls POST /auth/login. A 401 maps to ErrInvalidCredentials carrying
// the backend's message when it sends one.
func (c *APIClient) Login(ctx context.Context, payload LoginRequest) (*TokenPair, error) {
	res, body, err := c.post(ctx, "/auth/login", payload)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusBadRequest {
		return nil, backendError(ErrInvalidCredentials, body)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, unexpectedStatusError("login", res.StatusCode)
	}

	pair := &TokenPair{}
	if err := json.Unmarshal(body, pair); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode login response")
	}
	return pair, nil
}

// Register calls POST /auth/register. Field-level rejections come back as a
// FastAPI-style detail list; they are joined into one ErrValidationFailed
// message.
func (c *APIClient) Register(ctx context.Context, payload RegisterRequest) (*RegisterResult, error) {
	res, body, err := c.post(ctx, "/auth/register", payload)
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusConflict ||
		res.StatusCode == http.StatusUnprocessableEntity {
		return nil, backendError(ErrValidationFailed, body)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, unexpectedStatusError("register", res.StatusCode)
	}

	result := &RegisterResult{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode register response")
	}
	return result, nil
}

// Refresh calls POST /auth/refresh. Any backend rejection maps to
// ErrRenewalRejected: a refused refresh credential always ends the session.
func (c *APIClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload := map[string]string{"refresh_token": refreshToken}

	res, body, err := c.post(ctx, "/auth/refresh", payload)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, backendError(ErrRenewalRejected, body)
	}

	pair := &TokenPair{}
	if err := json.Unmarshal(body, pair); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode refresh response")
	}
	return pair, nil
}

func (c *APIClient) post(ctx context.Context, path string, payload any) (*http.Response, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("auth request failed: %s %s", path, err)
		return nil, nil, errors.Wrap(err, errors.CategoryOperation, "auth request failed")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CategoryOperation, "failed to read auth response")
	}

	c.logger.Debug("auth request: %s status=%d", path, res.StatusCode)

	return res, body, nil
}

// errorBody is the backend's error envelope. Detail is either a plain string
// or a list of field-level objects with a msg key.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// backendError builds an error in fallback's category carrying the
// backend-supplied detail when present, the fallback message otherwise.
func backendError(fallback *errors.Error, body []byte) error {
	message := backendDetail(body)
	if message == "" {
		return fallback
	}

	return errors.New(message, fallback.Category).
		WithTextCode(fallback.TextCode).
		WithCode(fallback.Code)
}

func backendDetail(body []byte) string {
	envelope := errorBody{}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(envelope.Detail, &plain); err == nil {
		return plain
	}

	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		messages := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg != "" {
				messages = append(messages, f.Msg)
			}
		}
		if len(messages) > 0 {
			return strings.Join(messages, ", ")
		}
	}

	return ""
}

func unexpectedStatusError(op string, status int) error {
	return errors.New(fmt.Sprintf("%s failed with status %d", op, status), errors.CategoryOperation).
		WithCode(status)
}
