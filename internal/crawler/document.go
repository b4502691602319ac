package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a fetched page the Spider can search and expand.
type Document interface {
	// Text returns the visible text of the page as one string.
	Text() string

	// Links returns the href of every anchor, resolved to an absolute URL,
	// in the order the anchors appear in the markup. Hrefs that cannot be
	// resolved are returned as empty strings.
	Links() []string
}

// invisibleElements hold text that is never rendered.
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// HTMLDocument is a Document backed by a parsed HTML tree.
type HTMLDocument struct {
	// base is the URL relative hrefs are resolved against.
	base *url.URL

	// doc is the parsed page.
	doc *goquery.Document
}

// NewHTMLDocument parses HTML from r. Relative links are resolved against
// baseURL, which should be the final URL of the response.
func NewHTMLDocument(r io.Reader, baseURL string) (*HTMLDocument, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	return &HTMLDocument{base: base, doc: doc}, nil
}

// Text concatenates all text nodes outside script, style, noscript and
// template elements, with runs of whitespace collapsed to one space.
func (d *HTMLDocument) Text() string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if invisibleElements[n.Data] {
				return
			}
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range d.doc.Nodes {
		walk(n)
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Links returns every anchor href resolved against the base URL.
func (d *HTMLDocument) Links() []string {
	links := make([]string, 0)
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, d.resolve(href))
	})
	return links
}

// resolve turns href into an absolute URL, or "" when it cannot.
func (d *HTMLDocument) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := d.base.ResolveReference(u)
	if !resolved.IsAbs() {
		return ""
	}
	return resolved.String()
}
