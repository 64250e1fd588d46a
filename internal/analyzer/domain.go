package analyzer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMalformedURL is returned when a url has no usable host component.
var ErrMalformedURL = errors.New("malformed url")

// Domain returns the lowercased host of an absolute url, without port or
// userinfo. Relative urls and urls without a host (about:, file:, data:)
// yield ErrMalformedURL.
func Domain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	host := u.Hostname()
	if !u.IsAbs() || host == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, rawURL)
	}
	return strings.ToLower(host), nil
}
