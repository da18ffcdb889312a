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
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/membrocelestial/internal/common"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
	"github.com/dmitrijs2005/membrocelestial/internal/metrics"
)

const maxErrorBody = 64 << 10

// HTTPClient talks to the REST backend. Protected calls carry the trusted
// tenant id in the X-Igreja-Id header; without one they fail before any
// network I/O.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	tenants   TenantSource
	metrics   *metrics.GatewayMetrics
	log       logging.Logger
	requestID func() string
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithRequestIDFunc overrides the X-Request-ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *HTTPClient) { c.requestID = fn }
}

func NewHTTPClient(baseURL string, tenants TenantSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:   u,
		http:      &http.Client{Timeout: 10 * time.Second},
		tenants:   tenants,
		log:       logging.NewNop(),
		requestID: uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Call sends body as JSON and decodes the response into out. Either may be
// nil.
func (c *HTTPClient) Call(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindTransport, Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}

// CallBlob returns the response body untouched. Used for documents.
func (c *HTTPClient) CallBlob(ctx context.Context, method, path string) ([]byte, error) {
	return c.do(ctx, method, path, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (raw []byte, err error) {
	start := time.Now()
	protected := !IsPublicRoute(path)
	rid := c.requestID()
	ctx = logging.ContextWith(ctx, "request_id", rid)
	status := 0

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).String()
		}
		if status != 0 || outcome == KindTransport.String() {
			c.metrics.Observe(method, path, outcome, time.Since(start))
		}
		c.log.Debug(ctx, "remote call",
			"method", method, "route", metrics.Route(path), "status", status,
			"outcome", outcome, "duration", time.Since(start))
	}()

	var tenant string
	if protected {
		tenant, err = c.checkTenant(ctx)
		if err != nil {
			return nil, err
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		c.metrics.Refused(KindStale.String())
		return nil, NewError(KindStale, ctx.Err())
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, rid)
	if protected {
		req.Header.Set(common.TenantHeaderName, tenant)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewError(KindStale, ctx.Err())
		}
		return nil, NewError(KindTransport, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.statusError(resp.StatusCode, protected, b)
	}

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewError(KindStale, ctx.Err())
		}
		return nil, NewError(KindTransport, err)
	}

	// The tenant may have changed while the request was in flight; such a
	// response belongs to the previous tenant and is dropped.
	if protected {
		if current, ok := c.tenants.TrustedTenantID(); !ok || current != tenant {
			return nil, NewError(KindStale, fmt.Errorf("tenant changed during %s %s", method, path))
		}
	}

	return raw, nil
}

func (c *HTTPClient) checkTenant(ctx context.Context) (string, error) {
	id, ok := "", false
	if c.tenants != nil {
		id, ok = c.tenants.TrustedTenantID()
	}
	if !ok || id == "" {
		c.metrics.Refused(KindUnauthenticated.String())
		return "", NewError(KindUnauthenticated, nil)
	}
	if pinned, ok := TenantFromContext(ctx); ok && pinned != id {
		c.metrics.Refused(KindStale.String())
		return "", NewError(KindStale, fmt.Errorf("issued for tenant %q, trusted is %q", pinned, id))
	}
	return id, nil
}

func (c *HTTPClient) statusError(status int, protected bool, body []byte) *Error {
	e := &Error{Status: status, Message: remoteMessage(body)}
	switch {
	case status == http.StatusUnauthorized && protected:
		e.Kind = KindUnauthenticated
	case status < http.StatusInternalServerError:
		e.Kind = KindRemoteRejected
	default:
		e.Kind = KindTransport
	}
	return e
}

// remoteMessage extracts {"message": ...} or {"error": ...} from an error
// body. Plain-text bodies are used as is.
func remoteMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	if body[0] == '{' || body[0] == '[' || body[0] == '<' {
		return ""
	}
	return string(body)
}
