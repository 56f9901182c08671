package apicall

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler reports method, path, query, selected headers and body back as JSON.
func echoHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo", "yes")
		w.WriteHeader(http.StatusAccepted)
		_, _ = fmt.Fprintf(w, `{"method":%q,"path":%q,"query":%q,"auth":%q,"accept":%q,"contentType":%q,"tenant":%q,"body":%q}`,
			r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization"), r.Header.Get("Accept"),
			r.Header.Get("Content-Type"), r.Header.Get("X-Tenant"), strings.TrimSpace(string(body)))
	}
}

func newDispatchers(t *testing.T, baseURL string) map[string]Dispatcher {
	t.Helper()
	httpDispatcher, err := NewHTTPDispatcher(WithBaseURL(baseURL), WithDefaultHeader("X-Tenant", "default"))
	require.NoError(t, err)
	return map[string]Dispatcher{
		"net/http": httpDispatcher,
		"resty":    NewRestyDispatcher(resty.New().SetHeader("X-Tenant", "default"), baseURL),
	}
}

func TestDispatchers_PostSendsJSON(t *testing.T) {
	server := startMockServer(echoHandler(t))
	defer server.Close()

	for name, dispatcher := range newDispatchers(t, server.URL+"/api") {
		t.Run(name, func(t *testing.T) {
			// When
			resp, err := dispatcher.Dispatch(context.Background(), "post", "/users?x=1",
				map[string]any{"name": "ann"}, map[string]string{"Authorization": "Bearer t", "X-Tenant": "acme"})

			// Then
			require.NoError(t, err)
			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
			assert.Equal(t, "202 Accepted", resp.Status)
			assert.Equal(t, "yes", resp.Headers.Get("X-Echo"))
			assert.Equal(t, int64(len(resp.Body)), resp.Size)
			assert.Equal(t, string(resp.Body), resp.BodyString)
			assert.JSONEq(t, `{"method":"POST","path":"/api/users","query":"x=1","auth":"Bearer t",`+
				`"accept":"application/json","contentType":"application/json","tenant":"acme","body":"{\"name\":\"ann\"}"}`,
				resp.BodyString)
			require.NotNil(t, resp.Request)
			assert.Equal(t, "post", resp.Request.Verb)
			assert.Equal(t, server.URL+"/api/users?x=1", resp.Request.URL)
		})
	}
}

func TestDispatchers_GetSendsNoBody(t *testing.T) {
	server := startMockServer(echoHandler(t))
	defer server.Close()

	for name, dispatcher := range newDispatchers(t, "") {
		t.Run(name, func(t *testing.T) {
			resp, err := dispatcher.Dispatch(context.Background(), "get", server.URL+"/users?a=1", nil, nil)

			require.NoError(t, err)
			assert.JSONEq(t, `{"method":"GET","path":"/users","query":"a=1","auth":"",`+
				`"accept":"application/json","contentType":"","tenant":"default","body":""}`, resp.BodyString)
		})
	}
}

func TestDispatchers_TransportError(t *testing.T) {
	server := startMockServer(echoHandler(t))
	closedURL := server.URL
	server.Close()

	for name, dispatcher := range newDispatchers(t, "") {
		t.Run(name, func(t *testing.T) {
			resp, err := dispatcher.Dispatch(context.Background(), "get", closedURL+"/users", nil, nil)

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "http request failed")
		})
	}
}

func TestHTTPDispatcher_WithHTTPClient(t *testing.T) {
	// Given
	var seen *http.Request
	client := &http.Client{Transport: &mockRoundTripper{RoundTripFunc: func(req *http.Request) (*http.Response, error) {
		seen = req
		return &http.Response{
			StatusCode:    http.StatusNoContent,
			Status:        "204 No Content",
			Proto:         "HTTP/1.1",
			Header:        http.Header{},
			Body:          io.NopCloser(http.NoBody),
			ContentLength: 0,
		}, nil
	}}}
	dispatcher, err := NewHTTPDispatcher(WithHTTPClient(client))
	require.NoError(t, err)

	// When
	resp, err := dispatcher.Dispatch(context.Background(), "delete", "http://api.test/users/1", map[string]any{}, nil)

	// Then
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, seen.Method)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.BodyString)
	assert.False(t, resp.IsTLS)
}

func TestHTTPDispatcher_NilClientFallsBack(t *testing.T) {
	dispatcher, err := NewHTTPDispatcher(WithHTTPClient(nil))
	require.NoError(t, err)
	assert.NotNil(t, dispatcher.httpClient)
}

func TestTLSVersionName(t *testing.T) {
	assert.Equal(t, "TLS 1.3", tlsVersionName(0x0304))
	assert.Equal(t, "TLS unknown (0x9999)", tlsVersionName(0x9999))
}

// mockRoundTripper is a helper for mocking http.RoundTripper
type mockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.RoundTripFunc != nil {
		return m.RoundTripFunc(req)
	}
	return nil, fmt.Errorf("RoundTripFunc not set")
}
