package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"schoolbff/internal/bff/model"

	"github.com/carlmjohnson/requests"
)

const (
	HeaderRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Budgets are the per-call time limits by kind of upstream operation.
type Budgets struct {
	Read   time.Duration // single reads and deletes
	Update time.Duration
	Heavy  time.Duration // list queries and creates
}

// DefaultBudgets matches the upstream service's documented latencies.
var DefaultBudgets = Budgets{
	Read:   30 * time.Second,
	Update: 45 * time.Second,
	Heavy:  90 * time.Second,
}

// Call describes one upstream request.
type Call struct {
	Method  string
	Path    string
	Query   url.Values
	Body    []byte
	Timeout time.Duration
	// WithoutTenant omits X-Tenant-ID. Only the tenant lookup itself uses it.
	WithoutTenant bool
}

// Response is a 2xx upstream answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// ContentType returns the upstream content type, defaulting to JSON.
func (r *Response) ContentType() string {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return contentTypeJSON
}

// Client talks to the upstream school service on behalf of one caller at a
// time; credentials travel with every call and nothing is kept between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  http.RoundTripper
	budgets    Budgets
}

type Option func(*Client)

// WithTransport replaces the round tripper, e.g. with requests.ReplayString in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithBudgets overrides DefaultBudgets. Zero fields keep their default.
func WithBudgets(b Budgets) Option {
	return func(c *Client) {
		if b.Read > 0 {
			c.budgets.Read = b.Read
		}
		if b.Update > 0 {
			c.budgets.Update = b.Update
		}
		if b.Heavy > 0 {
			c.budgets.Heavy = b.Heavy
		}
	}
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		budgets:    DefaultBudgets,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Budgets() Budgets { return c.budgets }

// Do performs call under its own timeout. Non-2xx answers come back as
// *model.UpstreamError, an exceeded budget as model.ErrUpstreamTimeout and
// any other transport failure as model.ErrUpstreamUnavailable.
func (c *Client) Do(ctx context.Context, creds model.Credentials, call Call) (*Response, error) {
	if !call.WithoutTenant && !model.IsCanonicalUUID(creds.TenantID) {
		return nil, model.ErrTenantNotNormalized
	}

	timeout := call.Timeout
	if timeout <= 0 {
		timeout = c.budgets.Read
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := call.Method
	if method == "" {
		method = http.MethodGet
	}

	var resp Response
	b := requests.
		URL(c.baseURL+call.Path).
		Client(c.httpClient).
		Method(method).
		Bearer(creds.AccessToken).
		Accept(contentTypeJSON).
		AddValidator(func(*http.Response) error { return nil }).
		Handle(func(res *http.Response) error {
			resp.Status = res.StatusCode
			resp.Header = res.Header.Clone()
			body, err := io.ReadAll(res.Body)
			resp.Body = body
			return err
		})
	if c.transport != nil {
		b = b.Transport(c.transport)
	}
	if !call.WithoutTenant {
		b = b.Header(model.HeaderTenantID, creds.TenantID)
	}
	if creds.RequestID != "" {
		b = b.Header(HeaderRequestID, creds.RequestID)
	}
	for key, values := range call.Query {
		b = b.Param(key, values...)
	}
	if call.Body != nil {
		b = b.ContentType(contentTypeJSON).BodyBytes(call.Body)
	}

	if err := b.Fetch(ctx); err != nil {
		return nil, classify(ctx, err)
	}

	if resp.Status < 200 || resp.Status > 299 {
		return nil, &model.UpstreamError{
			Status:      resp.Status,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        resp.Body,
		}
	}
	return &resp, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrUpstreamTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", model.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
}
