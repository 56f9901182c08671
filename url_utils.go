package apicall

import (
	"fmt"
	"net/url"
	"strings"
)

// joinURLPaths joins base and request paths, keeping the request's query and fragment.
func joinURLPaths(base *url.URL, requestURL *url.URL) (*url.URL, error) {
	targetPath, err := url.JoinPath(base.Path, requestURL.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to join URL paths %s and %s: %w", base.Path, requestURL.Path, err)
	}

	joined := url.URL{
		Scheme:   base.Scheme,
		Opaque:   base.Opaque,
		User:     base.User,
		Host:     base.Host,
		Path:     targetPath,
		RawQuery: requestURL.RawQuery,
		Fragment: requestURL.Fragment,
	}

	// Round-trip through Parse so the result is a fully validated URL.
	return url.Parse(joined.String())
}

// resolveAgainstBase resolves target against baseURL. Absolute targets and an empty
// base leave target untouched. Rooted paths are appended to the base path instead of
// replacing it, so "/users" against "http://host/api" gives "http://host/api/users".
func resolveAgainstBase(baseURL, target string) (string, error) {
	requestURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %s: %w", target, err)
	}
	if requestURL.IsAbs() || baseURL == "" {
		return requestURL.String(), nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %s: %w", baseURL, err)
	}

	if strings.HasPrefix(requestURL.Path, "/") && base.Path != "" && base.Path != "/" {
		joined, err := joinURLPaths(base, requestURL)
		if err != nil {
			return "", err
		}
		return joined.String(), nil
	}

	return base.ResolveReference(requestURL).String(), nil
}

// appendQuery attaches an encoded query string to rawURL, respecting any query it already has.
func appendQuery(rawURL, query string) string {
	if query == "" {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + query
	}
	return rawURL + "?" + query
}
