package crawl

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Digest returns a stable fingerprint of a sorted link set. Equal sets
// produce equal digests.
func Digest(sorted []string) string {
	h := xxhash.New()
	for i, link := range sorted {
		if i > 0 {
			_, _ = h.WriteString("\n")
		}
		_, _ = h.WriteString(link)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatElapsed renders d rounded for humans: "850ms", "12.3s", "4m05s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

// FormatSummary renders the one-line report printed after a discovery.
func FormatSummary(source string, count int, elapsed time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d links", count)
	if source != "" {
		fmt.Fprintf(&b, " via %s", source)
	}
	fmt.Fprintf(&b, " in %s", FormatElapsed(elapsed))
	return b.String()
}
