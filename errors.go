package apicall

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingEndpoint is returned when neither a default endpoint nor an override is configured.
	ErrMissingEndpoint = errors.New("no test endpoint configured")
	// ErrNoPrincipalProvider is returned when a call requires auth but the builder has no way to get a token.
	ErrNoPrincipalProvider = errors.New("auth required but no principal provider configured")
	// ErrNilPrincipal is returned when a principal provider reports success without a principal.
	ErrNilPrincipal = errors.New("principal provider returned no principal")
	// ErrUnknownRoute is returned by routers for names they cannot resolve.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrNoRouter is returned when an endpoint is resolved without a Router.
	ErrNoRouter = errors.New("no router configured")
)

// MalformedEndpointError reports a descriptor that is not of the form "verb@routeName".
type MalformedEndpointError struct {
	Endpoint string
}

func (e *MalformedEndpointError) Error() string {
	return fmt.Sprintf("malformed endpoint %q: expected format verb@routeName", e.Endpoint)
}

// UnsupportedVerbError reports a verb outside get, post, put, patch and delete.
type UnsupportedVerbError struct {
	Verb string
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf("unsupported HTTP verb (%s)", e.Verb)
}

// ResponseParseError is returned when a parsed view of the response body is requested
// but the body cannot be decoded.
type ResponseParseError struct {
	View string // "array" or "object"
	Body string
	Err  error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response body as %s: %v", e.View, e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// HeaderKeyCollisionError reports two header names that normalize to the same server variable.
type HeaderKeyCollisionError struct {
	Key   string
	Names []string
}

func (e *HeaderKeyCollisionError) Error() string {
	return fmt.Sprintf("headers %s all normalize to server key %s", strings.Join(e.Names, ", "), e.Key)
}

// InvalidIDError is returned by IDCodec implementations for values they cannot encode.
type InvalidIDError struct {
	Value any
	Err   error
}

func (e *InvalidIDError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot encode identifier %v: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("cannot encode identifier %v", e.Value)
}

func (e *InvalidIDError) Unwrap() error {
	return e.Err
}
