// Package goquery extracts hyperlinks from rendered HTML using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitelinks"
)

// ParseAnchors returns every <a> element carrying an href attribute, in
// document order. The href is returned untouched.
func ParseAnchors(html string) ([]sitelinks.Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitelinks.Errorf(sitelinks.EPARSE, "failed to parse HTML: %v", err)
	}

	var anchors []sitelinks.Anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		attrs := make(map[string]string)
		for _, node := range sel.Nodes {
			for _, a := range node.Attr {
				attrs[a.Key] = a.Val
			}
		}
		anchors = append(anchors, sitelinks.Anchor{
			Href:  href,
			Text:  strings.TrimSpace(sel.Text()),
			Attrs: attrs,
		})
	})
	return anchors, nil
}

var _ sitelinks.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor turns anchors into filtered absolute links.
type LinkExtractor struct {
	// SkipNofollow drops anchors with rel="nofollow".
	SkipNofollow bool
}

// NewLinkExtractor creates a LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks applies the link filter to every anchor in html, resolving
// relative hrefs under baseURL with any trailing slash removed. External
// links are kept. Duplicates are dropped, preserving first occurrence.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	anchors, err := ParseAnchors(html)
	if err != nil {
		return nil, err
	}

	base := strings.TrimRight(baseURL, "/")
	seen := make(map[string]struct{}, len(anchors))
	links := make([]string, 0, len(anchors))
	for _, a := range anchors {
		if e.SkipNofollow && hasRel(a.Attrs, "nofollow") {
			continue
		}
		link, ok := sitelinks.FilterLink(a.Href, base)
		if !ok {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links, nil
}

func hasRel(attrs map[string]string, value string) bool {
	for _, v := range strings.Fields(attrs["rel"]) {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
