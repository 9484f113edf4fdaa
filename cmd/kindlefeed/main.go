package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/kindlefeed"
	"github.com/fwojciec/kindlefeed/feed"
	"github.com/fwojciec/kindlefeed/fs"
	"github.com/fwojciec/kindlefeed/goquery"
	"github.com/fwojciec/kindlefeed/htmltomarkdown"
	kfhttp "github.com/fwojciec/kindlefeed/http"
	"github.com/fwojciec/kindlefeed/notion"
	"github.com/fwojciec/kindlefeed/readability"
	"github.com/fwojciec/kindlefeed/rod"
	kfslog "github.com/fwojciec/kindlefeed/slog"
	"github.com/fwojciec/kindlefeed/smtp"
	"github.com/fwojciec/kindlefeed/sqlite"
	"github.com/fwojciec/kindlefeed/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		m.Close()
		stop()
		os.Exit(1)
	}
	m.Close()
}

// Main represents the program.
type Main struct {
	// ConfigFiles are read before the environment. Set before calling Run().
	ConfigFiles []string

	// SQLite database holding the delivery history.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigFiles: DefaultConfigFiles,
	}
}

// Close releases the resources opened by Run.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	return firstErr
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
		kong.Name("kindlefeed"),
		kong.Description("Send saved links from Notion to a Kindle as one indexed document."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
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

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	switch kongCtx.Command() {
	case "extract <url>":
		cfg, err := LoadConfig(m.ConfigFiles...)
		if err != nil {
			return err
		}
		articles, err := m.newArticleExtractor(cli.Extract.Fetcher, cli.Extract.Extractor, 0, cfg, deps)
		if err != nil {
			return err
		}
		deps.Articles = articles
		deps.Converter = htmltomarkdown.NewConverter()

	case "history":
		if err := m.openDB(dbPath); err != nil {
			fmt.Fprintln(stderr, "Hint: Set KINDLEFEED_DB or --db to use a different database path")
			return err
		}
		deps.History = sqlite.NewDeliveryService(m.DB)

	default:
		syncer, err := m.newSyncer(cli, dbPath, deps)
		if err != nil {
			return err
		}
		deps.Syncer = syncer
	}

	return kongCtx.Run(deps)
}

// newSyncer loads configuration and wires the sync pipeline. Configuration
// is validated before any client is created.
func (m *Main) newSyncer(cli *CLI, dbPath string, deps *Dependencies) (*feed.Syncer, error) {
	cfg, err := LoadConfig(m.ConfigFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	cmd := cli.Sync

	articles, err := m.newArticleExtractor(cmd.Fetcher, cmd.Extractor, cmd.Retries, cfg, deps)
	if err != nil {
		return nil, err
	}

	registryOpts := []notion.Option{
		notion.WithURLProperty(cfg.NotionURLProperty),
		notion.WithReadProperty(cfg.NotionReadProperty),
	}
	if cfg.NotionFilterProp != "" {
		registryOpts = append(registryOpts, notion.WithContainsFilter(cfg.NotionFilterProp, cfg.NotionFilterValue))
	}

	syncer := &feed.Syncer{
		Articles: articles,
		Mailer: kfslog.NewLoggingMailer(
			smtp.NewMailer(cfg.GmailEmail, cfg.GmailPassword, cfg.KindleEmail,
				smtp.WithHost(cfg.SMTPHost),
				smtp.WithPort(cfg.SMTPPort),
				smtp.WithTimeout(cfg.SMTPTimeout),
			),
			logger.With("component", "mailer"),
		),
		Skip: kindlefeed.SkipRule{Extensions: cfg.SkipExtensions},
	}

	if cmd.DumpDir != "" {
		if err := os.MkdirAll(cmd.DumpDir, 0755); err != nil {
			return nil, fmt.Errorf("create dump directory: %w", err)
		}
		f, err := os.Create(filepath.Join(cmd.DumpDir, "response.json"))
		if err != nil {
			return nil, fmt.Errorf("create response dump: %w", err)
		}
		m.closers = append(m.closers, f)
		registryOpts = append(registryOpts, notion.WithResponseDump(f))
		syncer.Artifacts = fs.NewWriter(cmd.DumpDir, htmltomarkdown.NewConverter())
	}

	syncer.Registry = kfslog.NewLoggingRegistry(
		notion.NewRegistryService(cfg.NotionAPIKey, cfg.NotionDatabaseID, registryOpts...),
		logger.With("component", "registry"),
	)

	if !cmd.NoHistory && !cmd.DryRun {
		if err := m.openDB(dbPath); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: delivery history disabled: %v\n", err)
		} else {
			syncer.History = sqlite.NewDeliveryService(m.DB)
		}
	}

	return syncer, nil
}

// newArticleExtractor wires fetching, title resolution and content
// extraction for one article URL.
func (m *Main) newArticleExtractor(fetcherKind, extractorKind string, retries int, cfg *Config, deps *Dependencies) (*feed.Extractor, error) {
	logger := deps.Logger

	fetcher, err := newFetcher(fetcherKind, cfg)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed for --fetcher browser")
		return nil, err
	}
	m.closers = append(m.closers, fetcher)

	var content kindlefeed.Extractor = readability.NewExtractor()
	if extractorKind == "trafilatura" {
		content = trafilatura.NewExtractor()
	}

	return &feed.Extractor{
		Fetcher:     kfslog.NewLoggingFetcher(fetcher, logger.With("component", "fetcher")),
		Content:     content,
		Titles:      goquery.NewTitleResolver(),
		RateLimiter: feed.NewDomainLimiter(feed.DefaultHostInterval),
		RetryDelays: feed.DefaultRetryDelays(retries),
		Logf: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}, nil
}

func (m *Main) openDB(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	m.closers = append(m.closers, m.DB)
	return nil
}

func newFetcher(kind string, cfg *Config) (kindlefeed.Fetcher, error) {
	switch kind {
	case "browser":
		opts := []rod.Option{rod.WithFetchTimeout(cfg.FetchTimeout)}
		if cfg.UserAgent != "" {
			opts = append(opts, rod.WithUserAgent(cfg.UserAgent))
		}
		f, err := rod.NewFetcher(opts...)
		if err != nil {
			return nil, kindlefeed.Errorf(kindlefeed.ECONFIG, "start browser: %v", err)
		}
		return f, nil
	default:
		opts := []kfhttp.Option{kfhttp.WithTimeout(cfg.FetchTimeout)}
		if cfg.UserAgent != "" {
			opts = append(opts, kfhttp.WithUserAgent(cfg.UserAgent))
		}
		return kfhttp.NewFetcher(opts...), nil
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kindlefeed.db"
	}
	return filepath.Join(home, ".kindlefeed", "history.db")
}
