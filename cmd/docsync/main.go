package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/firecrawl"
	"github.com/fwojciec/docsync/htmltomarkdown"
	"github.com/fwojciec/docsync/ingest"
	"github.com/fwojciec/docsync/postgres"
	docslog "github.com/fwojciec/docsync/slog"
	"github.com/fwojciec/docsync/sqlite"
	"github.com/fwojciec/docsync/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := loadDotenv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadDotenv adds variables from path to the environment without
// overriding ones already set. A missing file is not an error.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Main represents the program.
type Main struct {
	// Store location used when --store is not given.
	DefaultStore string

	// Closer releases the opened store.
	Closer io.Closer

	// Store and Crawler override the real implementations, for end-to-end
	// testing.
	Store   docsync.Store
	Crawler docsync.CrawlService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DefaultStore: defaultStorePath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Closer != nil {
		return m.Closer.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsync"),
		kong.Description("Keep a searchable content store in sync with documentation sites."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsync --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store := m.Store
	if store == nil {
		location := cli.Store
		if location == "" {
			location = m.DefaultStore
		}
		store, err = m.openStore(ctx, location)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set DOCSYNC_STORE to a SQLite path or a postgres:// URL")
			return err
		}
		defer m.Close()
	}
	deps.Store = docslog.NewLoggingStore(store, deps.Logger)

	crawler := m.Crawler
	if crawler == nil && cli.Firecrawl.APIKey != "" {
		crawler = firecrawl.NewClient(cli.Firecrawl.APIKey, firecrawl.WithBaseURL(cli.Firecrawl.APIURL))
	}
	if crawler != nil {
		deps.Crawler = docslog.NewLoggingCrawlService(crawler, deps.Logger)
	}
	deps.Normalizer = &ingest.Normalizer{
		Extractor: trafilatura.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
	}

	return kongCtx.Run(deps)
}

// openStore opens the store at location: a postgres:// URL selects
// PostgreSQL, anything else is a SQLite database path.
func (m *Main) openStore(ctx context.Context, location string) (docsync.Store, error) {
	if isPostgresURL(location) {
		store, err := postgres.Open(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		m.Closer = store
		return store, nil
	}

	if location != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db := sqlite.NewDB(location)
	if err := db.Open(); err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", location, err)
	}
	m.Closer = db
	return sqlite.NewStore(db), nil
}

func isPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docsync.db"
	}
	return filepath.Join(home, ".docsync", "docsync.db")
}
