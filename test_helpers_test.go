package apicall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingDispatcher remembers every call and answers with a canned body.
type recordingDispatcher struct {
	calls    []Request
	body     string
	status   int
	err      error
	response func(call Request) string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, verb, url string, body map[string]any, headers map[string]string) (*Response, error) {
	call := Request{Verb: verb, URL: url, Body: body, Headers: headers}
	d.calls = append(d.calls, call)
	if d.err != nil {
		return nil, d.err
	}
	respBody := d.body
	if d.response != nil {
		respBody = d.response(call)
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{
		Request:    &call,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Body:       []byte(respBody),
		BodyString: respBody,
	}, nil
}

func (d *recordingDispatcher) lastCall(t *testing.T) Request {
	t.Helper()
	require.NotEmpty(t, d.calls, "no call was dispatched")
	return d.calls[len(d.calls)-1]
}

// pathRouter builds "/<name with dots as slashes>/<sorted params>" so tests can see
// exactly what the builder handed to the router.
func pathRouter() RouterFunc {
	return func(name string, params map[string]string) (string, error) {
		if strings.HasPrefix(name, "missing.") {
			return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
		}
		path := "/" + strings.ReplaceAll(name, ".", "/")
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			path += "/" + k + "=" + params[k]
		}
		return path, nil
	}
}

// prefixCodec "encodes" identifiers by prefixing them, which keeps expectations readable.
type prefixCodec struct{}

func (prefixCodec) Encode(id any) (string, error) {
	if s, ok := id.(string); ok && s == "bad" {
		return "", &InvalidIDError{Value: id, Err: errors.New("not numeric")}
	}
	return fmt.Sprintf("h:%v", id), nil
}

// countingPrincipals hands out the same principal and counts provisioning requests.
type countingPrincipals struct {
	calls int
	token string
	err   error
}

func (p *countingPrincipals) TestPrincipal(context.Context) (*Principal, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &Principal{ID: "tester", Token: p.token}, nil
}

// newTestBuilder wires a builder with in-memory collaborators.
func newTestBuilder(t *testing.T, options ...Option) (*CallBuilder, *recordingDispatcher, *countingPrincipals) {
	t.Helper()
	dispatcher := &recordingDispatcher{body: `{"ok":true}`}
	principals := &countingPrincipals{token: "test-token"}
	base := []Option{
		WithDispatcher(dispatcher),
		WithRouter(pathRouter()),
		WithIDCodec(prefixCodec{}),
		WithPrincipalProvider(principals),
	}
	b, err := New(append(base, options...)...)
	require.NoError(t, err)
	return b, dispatcher, principals
}

// Helper to create a mock server
func startMockServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}
