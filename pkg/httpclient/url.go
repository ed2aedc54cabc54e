package httpclient

import (
	"fmt"
	"net/url"
	"strings"
)

// normalizeBaseURL validates the base URL and appends a trailing slash when missing,
// so that joining a relative endpoint does not drop the last path segment.
func normalizeBaseURL(baseURLStr string) (*url.URL, error) {
	if strings.TrimSpace(baseURLStr) == "" {
		return nil, ErrBaseURLRequired
	}
	if !strings.HasSuffix(baseURLStr, "/") {
		baseURLStr += "/"
	}
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		return nil, fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err)
	}
	return baseURL, nil
}

// ResolveURL resolves the request target from the base URL and the endpoint path.
//   - An empty endpoint returns the base URL unchanged.
//   - With absolute=true the endpoint is used verbatim and the base URL is ignored.
//   - Otherwise the endpoint is joined to the base URL by RFC 3986 reference
//     resolution, trailing slashes in the base URL are significant:
//     "https://x.com/v2/" + "files" -> "https://x.com/v2/files", but a base
//     without a trailing slash replaces its last path segment.
func ResolveURL(base *url.URL, endpoint string, absolute bool) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case endpoint == "":
		if base == nil {
			return nil, ErrBaseURLRequired
		}
		clone := *base
		return &clone, nil
	case absolute:
		return url.Parse(endpoint)
	case base == nil:
		return nil, ErrBaseURLRequired
	default:
		return base.Parse(endpoint)
	}
}
