// Package extract turns fetched resources into plain text.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// invisibleSelector matches elements whose text never renders.
const invisibleSelector = "script, style, noscript, template"

// ParseHTML parses body into a goquery document.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// VisibleText returns every visible text block of doc, each trimmed of
// surrounding whitespace, joined by newlines. Blank blocks are dropped.
// The document is not modified.
func VisibleText(doc *goquery.Document) string {
	body := doc.Clone()
	body.Find(invisibleSelector).Remove()

	var blocks []string
	for _, n := range body.Nodes {
		collectText(n, &blocks)
	}
	return strings.Join(blocks, "\n")
}

func collectText(n *html.Node, blocks *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*blocks = append(*blocks, t)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, blocks)
	}
}
