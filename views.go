package apicall

import (
	"encoding/json"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/PaesslerAG/jsonpath"
)

// responseViews caches the parsed forms of the last response body. A view's error
// is cached too, so a bad body is decoded at most once per call.
type responseViews struct {
	content string

	arrayDone bool
	array     map[string]any
	arrayErr  error

	objectDone bool
	object     *gabs.Container
	objectErr  error
}

// Response returns the response captured by the last MakeCall, or nil.
func (b *CallBuilder) Response() *Response {
	return b.response
}

// ResponseContent returns the raw body of the last response. It never parses.
func (b *CallBuilder) ResponseContent() string {
	return b.views.content
}

// ResponseContentArray returns the last response body decoded as a JSON object.
// The result is computed on first access and reused until the next MakeCall.
// Each call returns a shallow copy, so callers may modify the top-level map.
func (b *CallBuilder) ResponseContentArray() (map[string]any, error) {
	if !b.views.arrayDone {
		b.views.arrayDone = true
		var decoded map[string]any
		if err := json.Unmarshal([]byte(b.views.content), &decoded); err != nil {
			b.views.arrayErr = &ResponseParseError{View: "array", Body: b.views.content, Err: err}
		} else {
			b.views.array = decoded
		}
	}
	if b.views.arrayErr != nil {
		return nil, b.views.arrayErr
	}
	if b.views.array == nil {
		return nil, nil
	}
	array := make(map[string]any, len(b.views.array))
	for k, v := range b.views.array {
		array[k] = v
	}
	return array, nil
}

// ResponseContentObject returns the last response body as a gabs container for
// path-style access. The container is shared between calls and must not be modified.
func (b *CallBuilder) ResponseContentObject() (*gabs.Container, error) {
	if !b.views.objectDone {
		b.views.objectDone = true
		container, err := gabs.ParseJSON([]byte(b.views.content))
		if err != nil {
			b.views.objectErr = &ResponseParseError{View: "object", Body: b.views.content, Err: err}
		} else {
			b.views.object = container
		}
	}
	return b.views.object, b.views.objectErr
}

// ResponseValue evaluates a JSONPath expression such as "$.data.id" against the
// last response body.
func (b *CallBuilder) ResponseValue(path string) (any, error) {
	object, err := b.ResponseContentObject()
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(path, object.Data())
	if err != nil {
		return nil, fmt.Errorf("jsonpath %s: %w", path, err)
	}
	return value, nil
}
