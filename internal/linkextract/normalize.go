package linkextract

import (
	"net/url"
	"strings"

	"github.com/nullmapper/distcrawler/pkg/urlutil"
)

var allowedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

var blockedPrefixes = []string{"mailto:", "javascript:", "data:"}

var blockedExts = []string{
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp",
	".pdf", ".zip", ".gz", ".tar", ".mp4", ".mp3",
}

// Normalize resolves href against base, canonicalizes the result, and
// rejects it (ok=false) when it names a non-http(s) scheme, a blocked
// pseudo-scheme (mailto/javascript/data), or a path ending in a known
// binary extension.
func Normalize(base string, href string) (canonical string, ok bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(strings.ToLower(href), prefix) {
			return "", false
		}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := baseURL.ResolveReference(ref)

	if _, allowed := allowedSchemes[strings.ToLower(resolved.Scheme)]; !allowed {
		return "", false
	}

	result := urlutil.Canonicalize(*resolved)

	lowerPath := strings.ToLower(result.Path)
	for _, ext := range blockedExts {
		if strings.HasSuffix(lowerPath, ext) {
			return "", false
		}
	}

	return result.String(), true
}
