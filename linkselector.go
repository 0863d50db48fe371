package sitelinks

// Anchor is a hyperlink element found in rendered markup.
type Anchor struct {
	Href  string
	Text  string
	Attrs map[string]string
}

// LinkExtractor extracts crawlable links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns the links that pass FilterLink,
	// deduplicated in document order. The baseURL is used to resolve
	// relative hrefs.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
