package apicall

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Dispatcher sends a resolved call and returns the server's response.
// Verbs are passed in lowercase as they appear in endpoint descriptors.
// A nil body means no payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, verb, url string, body map[string]any, headers map[string]string) (*Response, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, verb, url string, body map[string]any, headers map[string]string) (*Response, error)

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, verb, url string, body map[string]any, headers map[string]string) (*Response, error) {
	return f(ctx, verb, url, body, headers)
}

// HTTPDispatcher is a Dispatcher backed by net/http. Bodies are sent as JSON.
type HTTPDispatcher struct {
	httpClient     *http.Client
	BaseURL        string
	DefaultHeaders http.Header
}

// DispatcherOption is a functional option for configuring an HTTPDispatcher.
type DispatcherOption func(*HTTPDispatcher) error

// NewHTTPDispatcher creates a dispatcher using http.Client{} unless WithHTTPClient says otherwise.
func NewHTTPDispatcher(options ...DispatcherOption) (*HTTPDispatcher, error) {
	d := &HTTPDispatcher{
		httpClient:     &http.Client{},
		DefaultHeaders: make(http.Header),
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// WithHTTPClient allows providing a custom http.Client.
func WithHTTPClient(hc *http.Client) DispatcherOption {
	return func(d *HTTPDispatcher) error {
		if hc == nil {
			d.httpClient = &http.Client{}
		} else {
			d.httpClient = hc
		}
		return nil
	}
}

// WithBaseURL sets a base URL that relative call URLs are resolved against.
func WithBaseURL(baseURL string) DispatcherOption {
	return func(d *HTTPDispatcher) error {
		d.BaseURL = baseURL
		return nil
	}
}

// WithDefaultHeader adds a default header to be sent with every request.
// Per-call headers with the same name replace it.
func WithDefaultHeader(key, value string) DispatcherOption {
	return func(d *HTTPDispatcher) error {
		d.DefaultHeaders.Add(key, value)
		return nil
	}
}

// Dispatch implements Dispatcher.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, verb, rawURL string, body map[string]any, headers map[string]string) (*Response, error) {
	target, err := resolveAgainstBase(d.BaseURL, rawURL)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(verb), target, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range d.DefaultHeaders {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	slog.Debug("HTTPDispatcher: sending request", "method", httpReq.Method, "url", target)
	startTime := time.Now()
	httpResp, err := d.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		Request:  &Request{Verb: verb, URL: target, Body: body, Headers: headers},
		Duration: duration,
	}
	populateResponseDetails(resp, httpResp, bodyBytes)
	return resp, nil
}

// populateResponseDetails copies relevant information from an *http.Response and its body.
func populateResponseDetails(resp *Response, httpResp *http.Response, bodyBytes []byte) {
	resp.Status = httpResp.Status
	resp.StatusCode = httpResp.StatusCode
	resp.Proto = httpResp.Proto
	resp.Headers = httpResp.Header
	resp.Body = bodyBytes
	resp.BodyString = string(bodyBytes)
	resp.Size = httpResp.ContentLength // -1 if chunked
	if resp.Size == -1 || (resp.Size == 0 && len(bodyBytes) > 0) {
		resp.Size = int64(len(bodyBytes))
	}

	if httpResp.TLS != nil {
		resp.IsTLS = true
		resp.TLSVersion = tlsVersionName(httpResp.TLS.Version)
		resp.TLSCipherSuite = tls.CipherSuiteName(httpResp.TLS.CipherSuite)
	}
}

func tlsVersionName(version uint16) string {
	switch version {
	case tls.VersionTLS10:
		return "TLS 1.0"
	case tls.VersionTLS11:
		return "TLS 1.1"
	case tls.VersionTLS12:
		return "TLS 1.2"
	case tls.VersionTLS13:
		return "TLS 1.3"
	default:
		return fmt.Sprintf("TLS unknown (0x%04x)", version)
	}
}
