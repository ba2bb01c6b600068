package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// NormalizeURL returns the identity of a URL used for request deduplication:
// lower-case scheme and host, no fragment, query keys sorted and no trailing
// slash on non-root paths.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.RawQuery != "" {
		u.RawQuery = u.Query().Encode()
	}
	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	}
	return u.String(), nil
}

// PlaylistID returns the segment between "/playlist/" and the next "?" (or the
// end of the string). It is empty when rawURL has no playlist segment.
func PlaylistID(rawURL string) string {
	_, rest, ok := strings.Cut(rawURL, "/playlist/")
	if !ok {
		return ""
	}
	rest, _, _ = strings.Cut(rest, "/playlist/")
	id, _, _ := strings.Cut(rest, "?")
	return id
}

// componentUnescaper restores the bytes that url.QueryEscape escapes but a
// browser's encodeURIComponent leaves as they are.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent escapes s for use as a single URL path segment, byte for byte
// the way encodeURIComponent does.
func EscapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// SearchURL builds the playlist search URL for query on baseURL.
func SearchURL(baseURL, query string) string {
	return strings.TrimRight(baseURL, "/") + "/search/" + EscapeComponent(query) + "/playlists"
}
