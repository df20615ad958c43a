package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skippedHrefPrefixes are targets that never lead to another page.
var skippedHrefPrefixes = []string{"#", "mailto:", "tel:"}

// LinkFilter extracts the links a crawl should follow from a page.
type LinkFilter struct {
	// BaseURL is the crawl boundary, compared as a plain string prefix.
	BaseURL string
}

// ExtractLinks returns the in-boundary links of doc, resolved against
// pageURL, in document order. Duplicates are kept; the frontier drops them.
func (lf LinkFilter) ExtractLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || hasAnyPrefix(href, skippedHrefPrefixes) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		// Escaped form; DocumentName decodes it for naming.
		link := base.ResolveReference(ref).String()

		if lf.Allows(link) {
			links = append(links, link)
		}
	})
	return links
}

// Allows reports whether link is inside the boundary. A fragment after the
// prefix marks an in-page anchor and is rejected.
func (lf LinkFilter) Allows(link string) bool {
	rest, ok := strings.CutPrefix(link, lf.BaseURL)
	return ok && !strings.Contains(rest, "#")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
