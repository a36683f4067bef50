// Package urlutil provides URL canonicalization shared by the crawl
// frontier and the link classifier.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize strips the fragment and any trailing slash so that equivalent
// URLs map to one canonical form. Normalize(Normalize(u)) == Normalize(u).
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.TrimRight(rawURL, "/")
	}
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// SameDomain reports whether rawURL shares a host with base.
func SameDomain(base, rawURL string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return b.Host != "" && b.Host == u.Host
}
