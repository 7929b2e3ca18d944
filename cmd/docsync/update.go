package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/fs"
	"github.com/fwojciec/docsync/ingest"
)

// Run executes the update command.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	if deps.Crawler == nil {
		fmt.Fprintln(deps.Stderr, "error: FIRECRAWL_API_KEY not set. Get a key at https://firecrawl.dev")
		return docsync.Errorf(docsync.EINVALID, "FIRECRAWL_API_KEY not set")
	}

	ing := &ingest.Ingester{
		Crawler:    deps.Crawler,
		Store:      deps.Store,
		Normalizer: deps.Normalizer,
		Logger:     deps.Logger,
		Config:     c.config(),
	}
	if c.Mirror != "" {
		ing.Mirror = fs.NewMirror(c.Mirror)
	}

	stats, err := ing.Ingest(deps.Ctx, c.URLs, c.Force)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsync.ErrorMessage(err))
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(stats); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprint(deps.Stdout, ingest.FormatStats(stats))
	}

	return err
}

func (c *UpdateCmd) config() ingest.Config {
	return ingest.Config{
		DefaultRootURL: c.DefaultURL,
		Domain:         c.Domain,
		BatchSize:      c.BatchSize,
		MaxChunkLength: c.MaxLength,
		PollInterval:   c.PollInterval,
		MaxPolls:       c.MaxPolls,
		Crawl: docsync.CrawlOptions{
			Limit:           c.Limit,
			MaxDepth:        c.MaxDepth,
			CacheTTL:        c.CacheTTL,
			IncludePaths:    c.Include,
			ExcludePaths:    c.Exclude,
			OnlyMainContent: !c.FullPage,
		},
	}
}
