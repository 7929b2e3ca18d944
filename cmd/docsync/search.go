package main

import (
	"fmt"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/ingest"
)

// maxURLWidth bounds the source column of search output.
const maxURLWidth = 60

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Store.Search(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsync.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'docsync update' to sync a site.")
		return nil
	}

	if c.Full {
		fmt.Fprintln(deps.Stdout, docsync.FormatResults(results))
		return nil
	}

	for _, r := range results {
		source, _ := r.Metadata.String(docsync.MetaSource)
		title, ok := r.Metadata.String(docsync.MetaTitle)
		if !ok {
			title = "Untitled"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", ingest.TruncateURL(source, maxURLWidth), title)
	}

	return nil
}
