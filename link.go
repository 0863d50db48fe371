package sitelinks

import (
	"net/url"
	"path"
	"strings"
)

// deniedExtensions lists path extensions that never point at a document.
var deniedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
	".js": true, ".css": true, ".ico": true, ".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".avi": true, ".zip": true, ".pdf": true,
}

// FilterLink normalizes a raw href found on a page and reports whether it is
// a crawlable document link.
//
// Hrefs that do not start with "http" are joined against baseURL treated as
// a directory (a trailing slash is appended before joining). Absolute hrefs
// are kept as written. Empty, fragment-only and javascript: hrefs, non-HTTP
// schemes and links to static assets are rejected.
func FilterLink(rawHref, baseURL string) (string, bool) {
	href := strings.TrimSpace(rawHref)
	if href == "" || strings.HasPrefix(href, "#") || hasPrefixFold(href, "javascript:") {
		return "", false
	}

	if strings.HasPrefix(href, "/") || !strings.HasPrefix(href, "http") {
		base, err := url.Parse(baseURL + "/")
		if err != nil {
			return "", false
		}
		ref, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		href = base.ResolveReference(ref).String()
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	if deniedExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}

	return strings.TrimSpace(href), true
}

// InScope reports whether link belongs to rootHost. The comparison is an
// exact match on host[:port]; subdomains are out of scope.
func InScope(link, rootHost string) bool {
	return HostOf(link) == rootHost
}

// HostOf returns the host[:port] component of rawURL, or "" if it cannot be parsed.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
