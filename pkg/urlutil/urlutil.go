package urlutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PagePlaceholder marks where the page index goes in a path-based paginated URL,
// e.g. "https://example.com/blog/page/{page}".
const PagePlaceholder = "{page}"

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//   - Fragments are removed
//   - Query parameters are kept, re-encoded with sorted keys
//   - An empty path becomes "/"
//
// Query parameters are significant here: two pages of a paginated listing
// differ only by their query. A query that does not parse cleanly (";"
// separators, bad escapes) is kept verbatim, so no pair is ever dropped.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if canonical.Path == "" && canonical.Host != "" {
		canonical.Path = "/"
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	if canonical.RawQuery != "" {
		if query, err := url.ParseQuery(canonical.RawQuery); err == nil {
			canonical.RawQuery = query.Encode()
		}
	}
	canonical.ForceQuery = false

	return canonical
}

// CanonicalString parses raw and returns its canonical form as a string.
func CanonicalString(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	canonical := Canonicalize(*parsed)
	return canonical.String(), nil
}

// PageURL builds the URL for one page of a paginated listing.
//
// When baseURL contains PagePlaceholder it is substituted with the page index
// (path-based pagination). Otherwise pageParam=page is set on the query:
// an existing pageParam pair is replaced in place and every other pair of the
// base query is kept byte for byte.
func PageURL(baseURL string, pageParam string, page int) (string, error) {
	index := strconv.Itoa(page)
	if strings.Contains(baseURL, PagePlaceholder) {
		return strings.ReplaceAll(baseURL, PagePlaceholder, index), nil
	}
	if pageParam == "" {
		return "", fmt.Errorf("page parameter is required when %q is absent from %q", PagePlaceholder, baseURL)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	parsed.RawQuery = setQueryPair(parsed.RawQuery, pageParam, index)
	parsed.ForceQuery = false
	return parsed.String(), nil
}

// setQueryPair replaces the first key=... pair of rawQuery (dropping any
// repeats) or appends one. Other pairs are not re-encoded.
func setQueryPair(rawQuery string, key string, value string) string {
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	if rawQuery == "" {
		return pair
	}

	segments := strings.Split(rawQuery, "&")
	kept := make([]string, 0, len(segments)+1)
	replaced := false
	for _, segment := range segments {
		if queryKey(segment) != key {
			kept = append(kept, segment)
			continue
		}
		if !replaced {
			kept = append(kept, pair)
			replaced = true
		}
	}
	if !replaced {
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// queryKey returns the decoded key of a raw "key=value" segment,
// or the raw key when it is not validly escaped.
func queryKey(segment string) string {
	rawKey, _, _ := strings.Cut(segment, "=")
	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return rawKey
	}
	return key
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
