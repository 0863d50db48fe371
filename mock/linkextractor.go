package mock

import "github.com/fwojciec/sitelinks"

var _ sitelinks.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of sitelinks.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}
