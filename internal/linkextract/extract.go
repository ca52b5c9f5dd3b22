package linkextract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract parses an HTML document, returning its <title> text and the
// ordered, deduplicated list of canonical outbound links. When
// allowedDomains is non-empty, a link survives only if its hostname —
// compared case-insensitively with a leading "www." stripped — is a
// member. This www-stripping applies only to the filter comparison;
// the canonical link string itself, and the host keys used elsewhere
// (robots, rate limiter), are never www-stripped.
func Extract(base string, html []byte, allowedDomains map[string]struct{}) (title string, links []string, err error) {
	doc, parseErr := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if parseErr != nil {
		return "", nil, &ExtractError{Message: parseErr.Error(), Cause: ErrCauseNotHTML}
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		canonical, ok := Normalize(base, href)
		if !ok {
			return
		}
		if len(allowedDomains) > 0 && !hostAllowed(canonical, allowedDomains) {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		links = append(links, canonical)
	})

	return title, links, nil
}

func hostAllowed(rawURL string, allowedDomains map[string]struct{}) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	_, ok := allowedDomains[host]
	return ok
}
