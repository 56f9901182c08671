package apicall

import (
	"sort"
	"strings"
)

const serverHeaderPrefix = "HTTP_"

// TransformHeadersToServerVars converts request headers into CGI-style server
// variables: "X-Request-Id" becomes "HTTP_X_REQUEST_ID" and "Content-Type" becomes
// "CONTENT_TYPE". Two names that map to the same variable are an error.
func TransformHeadersToServerVars(headers map[string]string) (map[string]string, error) {
	result := make(map[string]string, len(headers))
	sources := make(map[string][]string, len(headers))

	for name, value := range headers {
		key := FormatServerHeaderKey(strings.ReplaceAll(strings.ToUpper(name), "-", "_"))
		sources[key] = append(sources[key], name)
		result[key] = value
	}

	for key, names := range sources {
		if len(names) > 1 {
			sort.Strings(names)
			return nil, &HeaderKeyCollisionError{Key: key, Names: names}
		}
	}

	return result, nil
}

// FormatServerHeaderKey prefixes an already-normalized header name with HTTP_,
// except for names that servers expose unprefixed.
func FormatServerHeaderKey(name string) string {
	if strings.HasPrefix(name, serverHeaderPrefix) || name == "CONTENT_TYPE" || name == "REMOTE_ADDR" {
		return name
	}
	return serverHeaderPrefix + name
}

// hasHeader reports whether headers contains name, ignoring case.
func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// jsonVerb strips the optional "json:" marker from a descriptor verb.
func jsonVerb(verb string) string {
	return strings.TrimPrefix(verb, "json:")
}
