package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	maxNameLength = 80
	rootName      = "index"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DocumentName derives a filesystem-safe document name from a URL: every
// occurrence of baseURL is removed, each remaining character outside
// [A-Za-z0-9_-] becomes "_", and the result is cut to 80 characters.
// The site root maps to "index".
//
// Percent-escapes are decoded first, so "Plan%20de%20Estudios" and
// "Plan de Estudios" name the same document.
func DocumentName(baseURL, pageURL string) string {
	name := unescape(pageURL)
	if baseURL != "" {
		name = strings.ReplaceAll(name, unescape(baseURL), "")
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	if name == "" {
		return rootName
	}
	return name
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// Kind is the type of resource behind a URL.
type Kind int

const (
	KindHTML Kind = iota
	KindPDF
)

func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "html"
}

// KindOf classifies a canonical URL by its extension.
func KindOf(canonicalURL string) Kind {
	if IsPDF(canonicalURL) {
		return KindPDF
	}
	return KindHTML
}

// IsPDF reports whether a canonical URL names a PDF document.
func IsPDF(canonicalURL string) bool {
	return strings.HasSuffix(strings.ToLower(canonicalURL), ".pdf")
}
