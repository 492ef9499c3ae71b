package common

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// NormalizeURL canonicalizes a URL for dedup purposes: fragments are
// dropped, scheme and host are lowercased, query parameters are sorted,
// and a trailing slash on a non-root path is removed.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)

	if parsed.RawQuery != "" {
		values := parsed.Query()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for _, k := range keys {
			vs := values[k]
			sort.Strings(vs)
			for _, v := range vs {
				if sb.Len() > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(url.QueryEscape(k))
				sb.WriteByte('=')
				sb.WriteString(url.QueryEscape(v))
			}
		}
		parsed.RawQuery = sb.String()
	}

	if len(parsed.Path) > 1 && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String()
}

// ExtractDomain returns the lowercased hostname of a URL, without port
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// SameDomain reports whether two URLs share a hostname
func SameDomain(a, b string) bool {
	da := ExtractDomain(a)
	return da != "" && da == ExtractDomain(b)
}

// PathPattern reduces a URL to the path prefix used for avoidance
// learning. URLs pointing at a file (last segment contains a dot) map to
// the containing directory so siblings share a pattern; directory-style
// paths map to themselves.
func PathPattern(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return "/"
	}

	p := parsed.Path
	last := p[strings.LastIndex(p, "/")+1:]
	if strings.Contains(last, ".") {
		p = path.Dir(p)
	}
	if p == "" || p == "." {
		return "/"
	}
	return p
}

// UnwrapViewerURL resolves document-viewer indirection. Pages commonly
// link attachments through a viewer endpoint carrying the real document
// URL in a "file" query parameter; the inner URL is what should be
// fetched. Returns the input unchanged when no wrapping is present.
func UnwrapViewerURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	inner := parsed.Query().Get("file")
	if inner == "" {
		return rawURL
	}

	decoded, err := url.QueryUnescape(inner)
	if err != nil {
		decoded = inner
	}

	if strings.HasPrefix(decoded, "http://") || strings.HasPrefix(decoded, "https://") {
		return decoded
	}

	// Relative viewer targets resolve against the viewer page itself
	ref, err := url.Parse(decoded)
	if err != nil {
		return rawURL
	}
	return parsed.ResolveReference(ref).String()
}

// ResolveLink resolves a possibly relative href against a base page URL.
// Returns an empty string for unsupported schemes (mailto, javascript, tel).
func ResolveLink(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
