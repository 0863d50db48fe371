package main

import (
	"fmt"

	"github.com/fwojciec/sitelinks"
	"github.com/fwojciec/sitelinks/crawl"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	if deps.Crawler != nil && !c.Quiet {
		deps.Crawler.Progress = func(event crawl.ProgressEvent) {
			switch event.Type {
			case crawl.ProgressVisiting:
				fmt.Fprintf(deps.Stderr, "Visiting: %s\n", event.URL)
			case crawl.ProgressFailed:
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 60), event.Error)
			}
		}
	}

	res, err := deps.Discoverer.Discover(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", errorText(err))
		return err
	}

	if c.Print {
		for _, link := range res.Links {
			fmt.Fprintln(deps.Stdout, link)
		}
	}
	fmt.Fprintln(deps.Stdout, crawl.FormatSummary(string(res.Source), res.Count, res.Elapsed))
	return nil
}

// errorText prefers the domain message and falls back to the full chain for
// errors that carry no code, such as interruption.
func errorText(err error) string {
	if sitelinks.ErrorCode(err) == sitelinks.EINTERNAL {
		return err.Error()
	}
	return sitelinks.ErrorMessage(err)
}
