package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

const (
	authRegisterPath = "/auth/register"
	authLoginPath    = "/auth/login"

	connectionErrorMessage = "Connection error. Please check your internet connection and try again."
)

// RESTClientOptions configures a RESTClient.
type RESTClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     formwave.TokenStore
	Breaker    *CircuitBreaker
}

// RESTClient talks to the FormWave backend. It implements FormClient,
// ResponseClient and AuthClient.
type RESTClient struct {
	baseURL string
	http    *http.Client
	tokens  formwave.TokenStore
	breaker *CircuitBreaker
}

var _ formwave.Client = (*RESTClient)(nil)

// NewRESTClient creates a client for the API rooted at opts.BaseURL. Without
// a token store the session lives in memory only.
func NewRESTClient(opts RESTClientOptions) *RESTClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &RESTClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		breaker: opts.Breaker,
	}
}

// envelope is the superset of the backend's JSON reply shapes.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Token string          `json:"token"`
	User  *formwave.User  `json:"user"`
	Error string          `json:"error"`
}

// do performs one API call. Paths other than login and registration need a
// stored token. A nil envelope is returned for successful non-JSON replies.
func (c *RESTClient) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	if c.breaker.IsOpen() {
		return nil, formwave.NewRemoteUnavailableError()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" && path != authLoginPath && path != authRegisterPath {
		return nil, formwave.NewAuthRequiredError()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, formwave.NewInternalError("encode request body", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, formwave.NewInternalError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.breaker.RecordFailure()
		}
		zap.S().Warnw("api request failed", "method", method, "path", path, "error", err)
		return nil, formwave.NewRemoteError(connectionErrorMessage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.ClearToken(ctx); err != nil {
			zap.S().Warnw("clear rejected token failed", "error", err)
		}
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if !ok {
			return nil, statusError(resp.StatusCode, fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode), "")
		}
		return nil, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		if !ok {
			return nil, statusError(resp.StatusCode, fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode), "")
		}
		return nil, formwave.NewError(formwave.ErrorTypeRemote, formwave.ErrCodeInvalidResponse, "malformed response body").
			WithCause(err).
			WithStatus(resp.StatusCode)
	}
	if !ok {
		raw := env.Error
		if raw == "" {
			raw = fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode)
		}
		zap.S().Debugw("api request rejected", "method", method, "path", path, "status", resp.StatusCode, "error", raw)
		return nil, statusError(resp.StatusCode, MapErrorMessage(raw, resp.StatusCode), raw)
	}
	return &env, nil
}

// decodeData unmarshals the data member of env into out.
func decodeData(env *envelope, out any) error {
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return formwave.NewError(formwave.ErrorTypeRemote, formwave.ErrCodeInvalidResponse, "response carries no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return formwave.NewError(formwave.ErrorTypeRemote, formwave.ErrCodeInvalidResponse, "malformed response data").
			WithCause(err)
	}
	return nil
}

func statusError(status int, message, raw string) *formwave.Error {
	var e *formwave.Error
	switch {
	case status == http.StatusUnauthorized:
		e = formwave.NewError(formwave.ErrorTypeUnauthorized, formwave.ErrCodeAuthRequired, message)
	case status == http.StatusForbidden:
		e = formwave.NewError(formwave.ErrorTypeForbidden, formwave.ErrCodePermissionDenied, message)
	case status == http.StatusNotFound:
		e = formwave.NewError(formwave.ErrorTypeNotFound, formwave.ErrCodeResourceNotFound, message)
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		e = formwave.NewError(formwave.ErrorTypeValidation, formwave.ErrCodeValidationFailed, message)
	default:
		e = formwave.NewError(formwave.ErrorTypeRemote, formwave.ErrCodeRemoteRequestFailed, message)
	}
	e = e.WithStatus(status)
	if raw != "" {
		e = e.WithDetail("serverError", raw)
	}
	return e
}

// MapErrorMessage turns a backend error string into the message shown to users.
func MapErrorMessage(raw string, status int) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "invalid login credentials"),
		strings.Contains(lower, "invalid email or password"),
		status == http.StatusUnauthorized:
		return "Invalid email or password. Please check your credentials and try again."
	case strings.Contains(lower, "user already exists"), strings.Contains(lower, "email already in use"):
		return "An account with this email already exists. Please try logging in instead."
	case strings.Contains(lower, "weak password"):
		return "Password is too weak. Please use at least 8 characters with a mix of letters and numbers."
	case strings.Contains(lower, "invalid email"):
		return "Please enter a valid email address."
	case strings.Contains(lower, "network"), strings.Contains(lower, "fetch"):
		return connectionErrorMessage
	case status == http.StatusInternalServerError:
		return "Server error. Please try again later or contact support if the problem persists."
	case status == http.StatusNotFound:
		return "The requested resource was not found."
	case status == http.StatusForbidden:
		return "You do not have permission to perform this action."
	case raw != "":
		return raw
	default:
		return "An unexpected error occurred. Please try again."
	}
}
