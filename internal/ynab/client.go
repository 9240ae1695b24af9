package ynab

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

	"github.com/toolhub/ynabhub/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultBaseURL = "https://api.ynab.com/v1"

const tracerName = "github.com/toolhub/ynabhub/internal/ynab"

// Client performs single, unretried calls against the YNAB REST API.
// The token is fixed at construction.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorDocument struct {
	Error *struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// Do sends one request to endpoint (relative to the base URL, query string
// included) and classifies the outcome. On success it returns the raw JSON
// body, or nil when the body was empty. Any returned error is a *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, "ynab.request", trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("ynab.endpoint", pathOnly(endpoint)),
	))
	defer span.End()

	raw, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		ye, _ := AsError(err)
		span.SetAttributes(attribute.String("ynab.error_kind", string(ye.Kind)))
		if ye.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", ye.Status))
		}
		span.SetStatus(codes.Error, ye.Message)
		telemetry.IncUpstreamError(string(ye.Kind), ye.Status)
		return nil, ye
	}
	span.SetStatus(codes.Ok, "")
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, UnknownError(fmt.Sprintf("Failed to encode request body: %v", err))
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, networkError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(unwrapURLError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(unwrapURLError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fallbackDetail(resp.StatusCode)
		var doc errorDocument
		if json.Unmarshal(data, &doc) == nil && doc.Error != nil && doc.Error.Detail != "" {
			detail = doc.Error.Detail
		}
		return nil, apiError(resp.StatusCode, detail, string(data))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, ParseError("Failed to parse successful YNAB API response.", string(data))
	}
	return json.RawMessage(data), nil
}

// unwrapURLError strips the "Get \"url\": " prefix net/http adds so the
// user sees the transport's own message.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

func pathOnly(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
