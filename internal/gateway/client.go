// Package gateway is the HTTP client of the AutoX marketplace API.
//
// Every call goes through Client.Request, which attaches the bearer token
// from a TokenSource, encodes JSON bodies and decodes the response envelope.
// Resource groups (Auth, Vehicles, ...) are thin bindings over the endpoint
// table in endpoints.go.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/metrics"
)

// DefaultBaseURL is used when the configured base URL is empty.
const DefaultBaseURL = "http://localhost:5000/api"

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"

	mimeJSON = "application/json"

	// customRoute labels requests issued outside the endpoint table.
	customRoute = "custom"
)

// RequestOptions describes one API call. The zero value is an
// unauthenticated GET.
type RequestOptions struct {
	Method       string
	Body         any
	Headers      map[string]string
	RequiresAuth bool

	route string
}

// Client issues requests against one marketplace API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenSource
	log     zerolog.Logger
	metrics *metrics.Client

	Auth            *AuthAPI
	Materials       *ListingAPI
	Vehicles        *VehicleAPI
	Partners        *PartnerAPI
	ServiceRequests *ServiceRequestAPI
	Uploads         *UploadAPI
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. The client imposes no timeout
// of its own; configure one here or through the request context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts ports.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *metrics.Client) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a Client for baseURL. Without WithTokenSource every request is
// sent unauthenticated.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthAPI{c: c}
	c.Materials = &ListingAPI{c: c, group: groupMaterials}
	c.Vehicles = &VehicleAPI{ListingAPI: ListingAPI{c: c, group: groupVehicles}}
	c.Partners = &PartnerAPI{c: c}
	c.ServiceRequests = &ServiceRequestAPI{c: c}
	c.Uploads = &UploadAPI{c: c}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request performs one API call. path must start with "/" and may carry a
// query string. The response body is decoded as an envelope regardless of
// status; non-2xx answers are returned as a *RequestError of KindStatus.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*domain.Envelope[json.RawMessage], error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	route := opts.route
	if route == "" {
		route = customRoute
	}

	if !strings.HasPrefix(path, "/") {
		return nil, c.fail(method, path, route, time.Now(), &RequestError{
			Kind: KindTransport, Method: method, Path: path,
			Err: fmt.Errorf("path %q must start with /", path),
		})
	}

	header := http.Header{}
	header.Set(headerContentType, mimeJSON)
	if opts.RequiresAuth {
		tok, err := c.bearer(ctx)
		if err != nil {
			return nil, c.fail(method, path, route, time.Now(), &RequestError{
				Kind: KindTransport, Method: method, Path: path, Err: err,
			})
		}
		if tok != "" {
			header.Set(headerAuthorization, "Bearer "+tok)
		}
	}
	for k, v := range opts.Headers {
		header.Set(k, v)
	}

	var body io.Reader
	if method != http.MethodGet && opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, c.fail(method, path, route, time.Now(), &RequestError{
				Kind: KindTransport, Method: method, Path: path,
				Err: fmt.Errorf("encode body: %w", err),
			})
		}
		body = bytes.NewReader(b)
	}

	return c.send(ctx, method, path, route, header, body)
}

func (c *Client) Get(ctx context.Context, path string, requiresAuth bool) (*domain.Envelope[json.RawMessage], error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodGet, RequiresAuth: requiresAuth})
}

func (c *Client) Post(ctx context.Context, path string, body any, requiresAuth bool) (*domain.Envelope[json.RawMessage], error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodPost, Body: body, RequiresAuth: requiresAuth})
}

func (c *Client) Put(ctx context.Context, path string, body any, requiresAuth bool) (*domain.Envelope[json.RawMessage], error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodPut, Body: body, RequiresAuth: requiresAuth})
}

func (c *Client) Delete(ctx context.Context, path string, requiresAuth bool) (*domain.Envelope[json.RawMessage], error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodDelete, RequiresAuth: requiresAuth})
}

// bearer returns the stored token, or "" when there is none.
func (c *Client) bearer(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}
	tok, ok, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return tok, nil
}

// send executes the request and applies the shared response handling.
func (c *Client) send(ctx context.Context, method, path, route string, header http.Header, body io.Reader) (*domain.Envelope[json.RawMessage], error) {
	start := time.Now()
	if header.Get(headerRequestID) == "" {
		header.Set(headerRequestID, uuid.NewString())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, c.fail(method, path, route, start, &RequestError{
			Kind: KindTransport, Method: method, Path: path,
			Err: fmt.Errorf("build request: %w", err),
		})
	}
	req.Header = header

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(method, path, route, start, &RequestError{
			Kind: KindTransport, Method: method, Path: path, Err: err,
		})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(method, path, route, start, &RequestError{
			Kind: KindTransport, Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("read body: %w", err),
		})
	}

	var env domain.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, c.fail(method, path, route, start, &RequestError{
			Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP error %d", resp.StatusCode)
		}
		return nil, c.fail(method, path, route, start, &RequestError{
			Kind: KindStatus, Method: method, Path: path, StatusCode: resp.StatusCode,
			Message: msg, Errors: env.Errors,
		})
	}

	c.metrics.ObserveRequest(method, route, metrics.OutcomeSuccess, time.Since(start))
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")
	return &env, nil
}

// fail logs and records a failed request, then returns it.
func (c *Client) fail(method, path, route string, start time.Time, re *RequestError) error {
	outcome := metrics.OutcomeTransport
	switch re.Kind {
	case KindStatus:
		outcome = metrics.OutcomeStatus
	case KindDecode:
		outcome = metrics.OutcomeDecode
	}
	c.metrics.ObserveRequest(method, route, outcome, time.Since(start))

	ev := c.log.Error()
	if re.Kind == KindStatus {
		ev = c.log.Warn()
	}
	if errors.Is(re.Err, context.Canceled) {
		ev = c.log.Debug()
	}
	ev.Str("method", method).
		Str("path", path).
		Str("kind", re.Kind.String()).
		Int("status", re.StatusCode).
		Err(re).
		Msg("api request failed")
	return re
}

// Decode converts the raw payload of env into T. A missing or null payload
// leaves Data at its zero value.
func Decode[T any](env *domain.Envelope[json.RawMessage]) (*domain.Envelope[T], error) {
	out := &domain.Envelope[T]{
		Success: env.Success,
		Message: env.Message,
		Errors:  env.Errors,
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out.Data); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrDecode, err)
	}
	return out, nil
}
