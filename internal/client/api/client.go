// Package api performs authorized requests against the recommendation
// service and classifies every outcome into exactly one of four kinds.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// Kind is the closed classification of a request outcome.
type Kind int

const (
	// Success is any 2xx response with a readable body.
	Success Kind = iota
	// AuthError is an HTTP 401: the credential was rejected.
	AuthError
	// SoftError is any other non-2xx: the request was understood but
	// rejected for domain reasons.
	SoftError
	// TransportError means no usable response was obtained.
	TransportError
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case AuthError:
		return "auth_error"
	case SoftError:
		return "soft_error"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// User-facing messages for non-success outcomes.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgTryAgain       = "Please try again."
	MsgBackendDown    = "Please check if the backend server is running."
)

// Result is the classified outcome of one request. Body is retained on
// Success so callers can decode their typed payload.
type Result struct {
	Kind    Kind
	Status  int
	Body    []byte
	Message string
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.Kind == Success }

// TokenSource supplies the current bearer token, if any.
type TokenSource interface {
	Get() (string, bool)
}

// Client issues requests with the current credential attached. Every call
// is a single attempt: no retry, no backoff, no queuing.
type Client struct {
	baseURL       string
	http          *http.Client
	tokens        TokenSource
	onAuthFailure func()
}

// NewClient returns a Client for the service at baseURL. tokens may return
// no token, in which case requests go out anonymous.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
}

// SetOnAuthFailure registers the hook invoked when a request comes back
// 401, before the classification is returned to the caller. The session
// controller uses it to tear down all derived state.
func (c *Client) SetOnAuthFailure(fn func()) {
	c.onAuthFailure = fn
}

// Do performs one request and classifies the outcome. contentType may be
// empty for body-less requests.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) Result {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Result{Kind: TransportError, Message: MsgBackendDown}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok, ok := c.tokens.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Kind: TransportError, Message: MsgBackendDown}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: TransportError, Status: resp.StatusCode, Message: MsgBackendDown}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Kind: Success, Status: resp.StatusCode, Body: payload}
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return Result{Kind: AuthError, Status: resp.StatusCode, Message: MsgSessionExpired}
	default:
		return Result{Kind: SoftError, Status: resp.StatusCode, Message: softMessage(payload)}
	}
}

// softMessage surfaces the service's detail/error field verbatim, falling
// back to a generic message.
func softMessage(payload []byte) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return MsgTryAgain
}

// decodeInto parses a Success body into v. A body that cannot be parsed is
// reclassified as a transport failure.
func decodeInto(res Result, v any) Result {
	if !res.OK() {
		return res
	}
	if err := json.Unmarshal(res.Body, v); err != nil {
		return Result{Kind: TransportError, Status: res.Status, Message: MsgBackendDown}
	}
	return res
}
