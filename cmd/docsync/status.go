package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docsync"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	crawl := "not configured (set FIRECRAWL_API_KEY)"
	if deps.Crawler != nil {
		crawl = "configured"
	}
	fmt.Fprintf(deps.Stdout, "Crawl service: %s\n", crawl)

	sum, ok := deps.Store.(docsync.Summarizer)
	if !ok {
		return nil
	}
	summary, err := sum.Summarize(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsync.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Documents: %d\n", summary.Documents)
	fmt.Fprintf(deps.Stdout, "Sources: %d\n", summary.Sources)
	if summary.LastUpdated.IsZero() {
		fmt.Fprintln(deps.Stdout, "Last updated: never")
	} else {
		fmt.Fprintf(deps.Stdout, "Last updated: %s\n", summary.LastUpdated.Format(time.RFC3339))
	}
	return nil
}
