package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Store      docsync.Store
	Crawler    docsync.CrawlService // nil when no API key is configured
	Normalizer *ingest.Normalizer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool           `short:"v" help:"Log debug output to stderr"`
	Store     string         `env:"DOCSYNC_STORE" help:"SQLite database path or postgres:// URL (default ~/.docsync/docsync.db)"`
	Firecrawl FirecrawlFlags `embed:""`

	Update UpdateCmd `cmd:"" help:"Crawl documentation sites and sync the store"`
	Search SearchCmd `cmd:"" help:"Search stored documents"`
	Status StatusCmd `cmd:"" help:"Show store contents and configuration"`
}

// FirecrawlFlags configure the crawl service.
type FirecrawlFlags struct {
	APIKey string `name:"firecrawl-api-key" env:"FIRECRAWL_API_KEY" help:"Firecrawl API key"`
	APIURL string `name:"firecrawl-api-url" env:"FIRECRAWL_API_URL" default:"https://api.firecrawl.dev" help:"Firecrawl API base URL"`
}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	URLs         []string      `arg:"" optional:"" name:"url" help:"Root URLs to crawl (default --default-url)"`
	DefaultURL   string        `name:"default-url" env:"DOCSYNC_DEFAULT_URL" help:"Root URL crawled when none are given"`
	Force        bool          `short:"f" help:"Rewrite every page even when unchanged"`
	Domain       string        `help:"Only store pages on this host and its subdomains (default: each root URL's host)"`
	Include      []string      `short:"i" help:"Only crawl paths matching this pattern (repeatable)"`
	Exclude      []string      `short:"x" help:"Skip paths matching this pattern (repeatable)"`
	Limit        int           `default:"500" help:"Maximum pages per crawl"`
	MaxDepth     int           `name:"max-depth" default:"10" help:"Maximum link depth from the root URL"`
	CacheTTL     time.Duration `name:"cache-ttl" default:"0s" help:"Accept pages the crawl service scraped within this age"`
	FullPage     bool          `name:"full-page" help:"Keep navigation and footers instead of main content only"`
	BatchSize    int           `name:"batch-size" default:"10" help:"Documents per store upsert"`
	MaxLength    int           `name:"max-length" default:"8000" help:"Maximum characters per stored document before chunking"`
	PollInterval time.Duration `name:"poll-interval" default:"2s" help:"Time between crawl status checks"`
	MaxPolls     int           `name:"max-polls" default:"300" help:"Status checks before a crawl times out"`
	Mirror       string        `type:"path" help:"Also write crawled pages as markdown files under this directory"`
	JSON         bool          `help:"Print statistics as JSON"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Source URL or text to search for"`
	Limit int    `short:"n" default:"10" help:"Maximum results"`
	Full  bool   `help:"Show full document content"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}
