package utils

import (
	"net/url"
	"strings"
)

// ResolveBookingURL turns an href scraped from a venue page into an absolute
// booking link. Relative paths are resolved against the venue's base URL,
// and raw spaces (some box-office systems emit them unencoded) become %20.
// An empty href stays empty: no booking URL means sold out or unbookable,
// and the screening is still valid.
func ResolveBookingURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", nil
	}

	ref, err := url.Parse(strings.ReplaceAll(href, " ", "%20"))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}
