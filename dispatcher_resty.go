package apicall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
)

// RestyDispatcher is a Dispatcher backed by a resty client. Retries, timeouts and
// redirect policy are whatever the wrapped client is configured with.
type RestyDispatcher struct {
	client  *resty.Client
	BaseURL string
}

// NewRestyDispatcher wraps client. A nil client gets resty.New().
func NewRestyDispatcher(client *resty.Client, baseURL string) *RestyDispatcher {
	if client == nil {
		client = resty.New()
	}
	return &RestyDispatcher{client: client, BaseURL: baseURL}
}

// Dispatch implements Dispatcher.
func (d *RestyDispatcher) Dispatch(ctx context.Context, verb, rawURL string, body map[string]any, headers map[string]string) (*Response, error) {
	target, err := resolveAgainstBase(d.BaseURL, rawURL)
	if err != nil {
		return nil, err
	}

	req := d.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	method := strings.ToUpper(verb)
	slog.Debug("RestyDispatcher: sending request", "method", method, "url", target)
	restyResp, err := req.Execute(method, target)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	resp := &Response{
		Request:  &Request{Verb: verb, URL: target, Body: body, Headers: headers},
		Duration: restyResp.Time(),
	}
	if restyResp.RawResponse != nil {
		populateResponseDetails(resp, restyResp.RawResponse, restyResp.Body())
	} else {
		resp.Status = restyResp.Status()
		resp.StatusCode = restyResp.StatusCode()
		resp.Proto = restyResp.Proto()
		resp.Headers = restyResp.Header()
		resp.Body = restyResp.Body()
		resp.BodyString = string(resp.Body)
		resp.Size = restyResp.Size()
	}
	return resp, nil
}
