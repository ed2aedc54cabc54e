package httpclient

import (
	"regexp"
	"strings"
)

const (
	ContentTypeApplicationJSON       = "application/json"
	ContentTypeApplicationJSONRegexp = `^application/([a-zA-Z0-9\.\-]+\+)?json$`
)

var jsonContentTypeRegexp = regexp.MustCompile(ContentTypeApplicationJSONRegexp)

func isJSONContentType(contentType string) bool {
	// Strip parameters, e.g. "application/json; charset=utf-8"
	if sep := strings.IndexByte(contentType, ';'); sep >= 0 {
		contentType = contentType[:sep]
	}
	return jsonContentTypeRegexp.MatchString(strings.TrimSpace(contentType))
}
