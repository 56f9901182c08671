package apicall

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const endpointSeparator = "@"

var supportedVerbs = map[string]bool{ //nolint:gochecknoglobals
	"get":    true,
	"post":   true,
	"put":    true,
	"patch":  true,
	"delete": true,
}

// CallBuilder drives calls against a routed API from tests. It holds an endpoint
// descriptor of the form "verb@routeName", route parameters and an auth flag,
// resolves them into a concrete request, attaches a bearer token when needed and
// keeps the last response around together with its parsed forms.
//
// A CallBuilder is not safe for concurrent use. Give each test its own.
type CallBuilder struct {
	dispatcher Dispatcher
	router     Router
	codec      IDCodec
	principals PrincipalProvider
	hashIDs    bool
	baseURL    string

	endpoint         string
	auth             bool
	endpointOverride *string
	authOverride     *bool
	routeParams      map[string]any
	paramErrs        map[string]error

	principal *Principal

	response *Response
	views    responseViews
}

// New creates a CallBuilder. Without WithDispatcher an HTTPDispatcher is used,
// pointed at the configured base URL.
func New(options ...Option) (*CallBuilder, error) {
	b := &CallBuilder{
		auth:        true,
		routeParams: make(map[string]any),
		paramErrs:   make(map[string]error),
	}

	for _, option := range options {
		if err := option(b); err != nil {
			return nil, err
		}
	}

	if b.dispatcher == nil {
		d, err := NewHTTPDispatcher(WithBaseURL(b.baseURL))
		if err != nil {
			return nil, err
		}
		b.dispatcher = d
	}
	if b.codec == nil {
		b.codec = BasexCodec{}
	}

	return b, nil
}

// Endpoint overrides the default endpoint descriptor. The override stays in place
// for every following call until changed or cleared with ClearOverrides.
// The descriptor is validated when the call is made.
func (b *CallBuilder) Endpoint(descriptor string) *CallBuilder {
	b.endpointOverride = &descriptor
	return b
}

// Auth overrides whether calls require auth. Like Endpoint, it persists across calls.
func (b *CallBuilder) Auth(required bool) *CallBuilder {
	b.authOverride = &required
	return b
}

// ClearOverrides drops the endpoint and auth overrides, restoring the defaults.
func (b *CallBuilder) ClearOverrides() *CallBuilder {
	b.endpointOverride = nil
	b.authOverride = nil
	return b
}

// GetEndpoint returns the endpoint override if set, else the default endpoint.
func (b *CallBuilder) GetEndpoint() string {
	if b.endpointOverride != nil {
		return *b.endpointOverride
	}
	return b.endpoint
}

// GetAuth returns the auth override if set, else the default.
func (b *CallBuilder) GetAuth() bool {
	if b.authOverride != nil {
		return *b.authOverride
	}
	return b.auth
}

// InjectID sets the "id" route parameter, encoded when id hashing is enabled.
func (b *CallBuilder) InjectID(value any) *CallBuilder {
	return b.injectURLParam("id", value, false)
}

// InjectURLParam sets a route parameter, encoded when id hashing is enabled.
// A later value for the same key replaces the earlier one.
func (b *CallBuilder) InjectURLParam(name string, value any) *CallBuilder {
	return b.injectURLParam(name, value, false)
}

// InjectRawURLParam sets a route parameter without encoding it.
func (b *CallBuilder) InjectRawURLParam(name string, value any) *CallBuilder {
	return b.injectURLParam(name, value, true)
}

// InjectURLParams sets several route parameters at once. Unlike InjectURLParam,
// values are not encoded; use InjectEncodedURLParams for that.
func (b *CallBuilder) InjectURLParams(params map[string]any) *CallBuilder {
	return b.injectURLParams(params, true)
}

// InjectEncodedURLParams sets several route parameters, encoding each one when id
// hashing is enabled.
func (b *CallBuilder) InjectEncodedURLParams(params map[string]any) *CallBuilder {
	return b.injectURLParams(params, false)
}

// ClearURLParams removes every route parameter.
func (b *CallBuilder) ClearURLParams() *CallBuilder {
	b.routeParams = make(map[string]any)
	b.paramErrs = make(map[string]error)
	return b
}

// RouteParams returns a copy of the current route parameters.
func (b *CallBuilder) RouteParams() map[string]any {
	params := make(map[string]any, len(b.routeParams))
	for k, v := range b.routeParams {
		params[k] = v
	}
	return params
}

func (b *CallBuilder) injectURLParams(params map[string]any, skipEncoding bool) *CallBuilder {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.injectURLParam(name, params[name], skipEncoding)
	}
	return b
}

// injectURLParam stores value under name. Encoding failures are kept and reported
// when the endpoint is next resolved, so the fluent chain is never broken.
func (b *CallBuilder) injectURLParam(name string, value any, skipEncoding bool) *CallBuilder {
	delete(b.paramErrs, name)

	if !b.hashIDs || skipEncoding {
		b.routeParams[name] = value
		return b
	}

	encoded, err := b.codec.Encode(value)
	if err != nil {
		delete(b.routeParams, name)
		b.paramErrs[name] = fmt.Errorf("route parameter %q: %w", name, err)
		return b
	}
	b.routeParams[name] = encoded
	return b
}

// parseEndpoint splits the active descriptor into verb and route name.
func (b *CallBuilder) parseEndpoint() (string, string, error) {
	descriptor := b.GetEndpoint()
	if descriptor == "" {
		return "", "", ErrMissingEndpoint
	}
	if strings.Count(descriptor, endpointSeparator) != 1 {
		return "", "", &MalformedEndpointError{Endpoint: descriptor}
	}

	verb, routeName, _ := strings.Cut(descriptor, endpointSeparator)
	verb = jsonVerb(verb)
	if verb == "" || routeName == "" {
		return "", "", &MalformedEndpointError{Endpoint: descriptor}
	}
	return verb, routeName, nil
}

// ResolveEndpoint validates the active descriptor and asks the router for the URL
// of its route, filled in with the current route parameters.
func (b *CallBuilder) ResolveEndpoint() (string, string, error) {
	verb, routeName, err := b.parseEndpoint()
	if err != nil {
		return "", "", err
	}

	if len(b.paramErrs) > 0 {
		var errs *multierror.Error
		names := make([]string, 0, len(b.paramErrs))
		for name := range b.paramErrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			errs = multierror.Append(errs, b.paramErrs[name])
		}
		return "", "", errs.ErrorOrNil()
	}

	if b.router == nil {
		return "", "", ErrNoRouter
	}

	params := make(map[string]string, len(b.routeParams))
	for k, v := range b.routeParams {
		params[k] = fmt.Sprint(v)
	}

	url, err := b.router.URL(routeName, params)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve route %s: %w", routeName, err)
	}

	slog.Debug("CallBuilder: resolved endpoint", "verb", verb, "route", routeName, "url", url)
	return verb, url, nil
}

// MakeCall resolves the active endpoint and sends it. For get calls body becomes
// the query string; other verbs send it as a JSON payload. When auth is required
// and headers carry no Authorization entry, a bearer token for the test principal
// is added. Headers passed in are never modified.
//
// Transport errors from the dispatcher are returned unchanged.
func (b *CallBuilder) MakeCall(ctx context.Context, body map[string]any, headers map[string]string) (*Response, error) {
	b.response = nil
	b.views = responseViews{}

	verb, url, err := b.ResolveEndpoint()
	if err != nil {
		return nil, err
	}

	if !supportedVerbs[verb] {
		return nil, &UnsupportedVerbError{Verb: verb}
	}

	if err := b.ensurePrincipal(ctx); err != nil {
		return nil, err
	}

	payload := body
	if verb == "get" {
		url = appendQuery(url, buildQuery(body))
		payload = nil
	} else if payload == nil {
		payload = map[string]any{}
	}

	headers, err = b.injectAccessToken(headers)
	if err != nil {
		return nil, err
	}

	resp, err := b.dispatcher.Dispatch(ctx, verb, url, payload, headers)
	if err != nil {
		return nil, err
	}

	b.response = resp
	if resp != nil {
		b.views.content = resp.BodyString
	}
	return resp, nil
}

// ensurePrincipal fetches the test principal once per builder.
func (b *CallBuilder) ensurePrincipal(ctx context.Context) error {
	if b.principal != nil || b.principals == nil {
		return nil
	}
	p, err := b.principals.TestPrincipal(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNilPrincipal
	}
	b.principal = p
	return nil
}

// injectAccessToken returns headers with a bearer token added when the call needs
// one and the caller did not supply an Authorization header of their own.
func (b *CallBuilder) injectAccessToken(headers map[string]string) (map[string]string, error) {
	if !b.GetAuth() || hasHeader(headers, "Authorization") {
		return headers, nil
	}
	if b.principal == nil {
		return nil, ErrNoPrincipalProvider
	}

	withToken := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		withToken[k] = v
	}
	withToken["Authorization"] = "Bearer " + b.principal.Token
	return withToken, nil
}
