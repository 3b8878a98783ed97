// Package urlutil canonicalizes article URLs so that the same page always
// produces the same dedup key.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// trackingParams are query parameters that identify campaigns or sessions,
// never content. They are removed before dedup comparison.
var trackingParams = map[string]struct{}{
	"fbclid":    {},
	"gclid":     {},
	"yclid":     {},
	"_ga":       {},
	"_gl":       {},
	"ref":       {},
	"from":      {},
	"utm_ref":   {},
	"_openstat": {},
}

// Normalize resolves raw against base (when base is non-nil), lowercases the
// scheme and host, drops the fragment and tracking parameters, and returns
// the canonical string. Only http and https URLs are accepted.
func Normalize(raw string, base *url.URL) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimSuffix(u.Host, ":80")
	u.Host = strings.TrimSuffix(u.Host, ":443")
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	for name := range q {
		if isTracking(name) {
			q.Del(name)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func isTracking(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "utm_") {
		return true
	}
	_, ok := trackingParams[name]
	return ok
}
