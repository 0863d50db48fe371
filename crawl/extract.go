package crawl

import (
	"context"

	"github.com/fwojciec/sitelinks"
)

// Extract renders pageURL through fetch and returns the filtered, absolute
// links found on it in document order. Errors come from the fetch (typically
// ERENDER) or from markup parsing (EPARSE); the caller decides whether to
// treat them as an empty page.
func Extract(ctx context.Context, fetch FetchFunc, links sitelinks.LinkExtractor, pageURL string) ([]string, error) {
	html, err := fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	found, err := links.ExtractLinks(html, pageURL)
	if err != nil {
		return nil, err
	}
	return found, nil
}
