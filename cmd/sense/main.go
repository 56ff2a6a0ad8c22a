// Package main is the sense CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/sense/internal/cli"
	"github.com/hyperjump/sense/internal/config"
	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/extract"
	"github.com/hyperjump/sense/internal/indexer"
	"github.com/hyperjump/sense/internal/keyword"
	"github.com/hyperjump/sense/internal/labeler"
	"github.com/hyperjump/sense/internal/mcp"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/scanner"
	"github.com/hyperjump/sense/internal/search"
	"github.com/hyperjump/sense/internal/server"
	"github.com/hyperjump/sense/internal/storage"
	"github.com/hyperjump/sense/internal/watcher"
	"github.com/hyperjump/sense/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultServerURL = "http://localhost:8080"

// loadConfig resolves the config file. An explicit path must exist. Otherwise config.yaml in
// the current directory wins, then ~/.sense/config.yaml, then built-in defaults rooted at the
// current directory. Returns the config and the path changes should be saved to.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	candidates := []string{filepath.Join(cwd, "config.yaml")}
	if home := config.DefaultPath(); home != "" {
		candidates = append(candidates, home)
	}
	for _, c := range candidates {
		if _, statErr := os.Stat(c); statErr == nil {
			cfg, loadErr := config.Load(c)
			if loadErr != nil {
				return nil, "", loadErr
			}
			return cfg, c, nil
		}
	}
	return config.Default(cwd), candidates[0], nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	var err error
	switch command {
	case "index":
		err = runIndex(args)
	case "search":
		err = runSearch(args)
	case "find":
		err = runFind(args)
	case "serve", "server":
		err = runServe(args)
	case "watch":
		err = runWatch(args)
	case "status":
		err = runStatus(args)
	case "export":
		err = runExport(args)
	case "check":
		err = runCheck(args)
	case "mcp":
		err = runMCP(args)
	case "version", "--version", "-v":
		fmt.Printf("sense version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

// commonFlags are shared by every command that opens the index.
type commonFlags struct {
	configPath string
	debug      bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file path (default: ./config.yaml, then ~/.sense/config.yaml)")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
}

// setup loads config and builds a logger. Quiet loggers only report warnings and errors.
func (c *commonFlags) setup(quiet bool) (*config.Config, string, *zap.Logger, error) {
	cfg, path, err := loadConfig(c.configPath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || c.debug
	var logger *zap.Logger
	if quiet && !debug {
		logger, err = utils.NewQuietLogger()
	} else {
		logger, err = utils.NewLogger(debug)
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, path, logger, nil
}

// reorderArgs moves flags that appear after positionals to the front so flag.Parse sees them.
// The flag package stops at the first non-flag argument.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinQuery joins positionals so multi-word queries work with or without shell quoting.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// rootArg returns the first positional as an absolute directory, or the configured root.
func rootArg(fs *flag.FlagSet, cfg *config.Config) (string, error) {
	root := cfg.Root
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	rebuild := fs.Bool("rebuild", false, "clear the index before indexing (required after changing the embedding model)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(args))

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	cfg, _, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}
	root, err := rootArg(fs, cfg)
	if err != nil {
		return err
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var summary *models.IndexSummary
	if *rebuild {
		summary, err = components.Pipeline.Rebuild(ctx, root)
	} else {
		summary, err = components.Pipeline.Run(ctx, root)
	}
	if summary != nil {
		if writeErr := cli.WriteSummary(os.Stdout, summary, format); writeErr != nil {
			return writeErr
		}
	}
	return err
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: sense search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  sense search sunset over the sea
  sense search --ext jpg --limit 3 "red car"
  sense search --pattern 'reports/*.pdf' quarterly revenue
  sense search --output json invoice
`)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	serverURL := fs.String("server", "", "server URL; when empty the index is read directly")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	ext := fs.String("ext", "", "only files with this extension")
	pattern := fs.String("pattern", "", "only files matching this glob (base name, or relative path if it contains '/')")
	output := fs.String("output", "text", "output format: text (score: path), compact (paths only), or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(reorderArgs(args))

	query := joinQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	q := &models.SearchQuery{
		Query:  query,
		Limit:  *limit,
		Filter: models.Filter{Ext: *ext, Pattern: *pattern},
	}

	if *serverURL != "" {
		resp, err := searchViaHTTP(*serverURL, q)
		if err != nil {
			return err
		}
		return cli.WriteSearchResults(os.Stdout, query, resp.Results, format)
	}

	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	results, err := components.Engine.Search(context.Background(), q)
	if err != nil {
		return err
	}
	return cli.WriteSearchResults(os.Stdout, query, results, format)
}

func runFind(args []string) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	limit := fs.Int("limit", 10, "number of results")
	fuzzy := fs.Int("fuzzy", 0, "maximum edit distance per word (0 disables typo tolerance)")
	output := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(reorderArgs(args))

	query := joinQuery(fs.Args())
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: sense find [flags] <words>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	hits, err := components.Labels.Search(query, *limit, &keyword.SearchOptions{Fuzziness: *fuzzy})
	if err != nil {
		return err
	}
	return cli.WriteLabelHits(os.Stdout, query, hits, format)
}

// watchRoots returns the configured watch directories, or the root when none are configured.
func watchRoots(cfg *config.Config) []string {
	if len(cfg.Watch.Directories) > 0 {
		return cfg.Watch.Directories
	}
	return []string{cfg.Root}
}

func newWatcher(cfg *config.Config, components *Components, logger *zap.Logger) *watcher.Watcher {
	return watcher.NewWatcher(
		watchRoots(cfg),
		cfg.Indexer.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		components.Pipeline,
		watcher.WithLogger(logger),
	)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	noWatch := fs.Bool("no-watch", false, "serve the API without watching directories")
	_ = fs.Parse(args)

	cfg, configPath, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("config loaded", zap.String("config_path", configPath), zap.Bool("debug", cfg.Debug || common.debug))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []server.Option{server.WithLogger(logger), server.WithLabelIndex(components.Labels)}
	if !*noWatch {
		watchSvc := newWatcher(cfg, components, logger)
		if err := watchSvc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watchSvc.Stop()
		go watchSvc.SyncExistingFiles()
		opts = append(opts, server.WithWatch(watchSvc, configPath))
	}

	srv := server.NewServer(components.Engine, components.Pipeline, cfg, opts...)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func printWatchUsage() {
	fmt.Fprintln(os.Stderr, `Usage: sense watch [flags]              Watch configured directories in the foreground
       sense watch add <path> [--server]  Add a directory to a running server
       sense watch remove <path> [--server]
       sense watch list [--server]`)
}

func runWatch(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add", "remove", "list":
			return runWatchRemote(args[0], args[1:])
		case "help", "-h", "--help":
			printWatchUsage()
			return nil
		}
	}

	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	_ = fs.Parse(args)

	cfg, _, logger, err := common.setup(false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		dirs := make([]string, 0, fs.NArg())
		for _, d := range fs.Args() {
			abs, err := filepath.Abs(d)
			if err != nil {
				return err
			}
			dirs = append(dirs, abs)
		}
		cfg.Watch.Directories = dirs
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w := newWatcher(cfg, components, logger)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()
	w.SyncExistingFiles()
	logger.Info("watching", zap.Strings("directories", w.Directories()))
	<-ctx.Done()
	return nil
}

func runWatchRemote(sub string, args []string) error {
	fs := flag.NewFlagSet("watch "+sub, flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(reorderArgs(args))

	switch sub {
	case "add", "remove":
		if fs.NArg() < 1 {
			printWatchUsage()
			os.Exit(1)
		}
		path, err := filepath.Abs(fs.Arg(0))
		if err != nil {
			return err
		}
		if sub == "add" {
			if err := watchAddViaHTTP(*serverURL, path); err != nil {
				return err
			}
			fmt.Printf("Added: %s\n", path)
			return nil
		}
		if err := watchRemoveViaHTTP(*serverURL, path); err != nil {
			return err
		}
		fmt.Printf("Removed: %s\n", path)
		return nil
	default:
		dirs, err := watchListViaHTTP(*serverURL)
		if err != nil {
			return err
		}
		for _, d := range dirs {
			fmt.Println(d)
		}
		return nil
	}
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	serverURL := fs.String("server", "", "server URL; when empty the index is read directly")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		return err
	}
	if *serverURL != "" {
		st, err := statusViaHTTP(*serverURL)
		if err != nil {
			return err
		}
		return cli.WriteStatus(os.Stdout, st, format)
	}

	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	st, err := components.Pipeline.Status(context.Background())
	if err != nil {
		return err
	}
	st.DatabasePath = cfg.Storage.DatabasePath
	st.LabelIndexPath = cfg.Storage.LabelIndexPath
	st.Provider = cfg.Embedding.Provider
	st.Model = cfg.Embedding.Model
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.LabelIndexPath)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		st.DiskUsageBytes = diskBytes
	}
	return cli.WriteStatus(os.Stdout, st, format)
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	outPath := fs.String("out", "", "write the sheet here instead of stdout")
	_ = fs.Parse(reorderArgs(args))

	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	root, err := rootArg(fs, cfg)
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := exportRows(context.Background(), store, scanner.New(root, cfg.Indexer.Extensions, cfg.Indexer.IncludeHidden), logger)
	if err != nil {
		return err
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return labeler.WriteSheet(out, rows)
}

// exportRows lists every scanned file with its hash and, when the store has one, its label.
func exportRows(ctx context.Context, store storage.Store, sc *scanner.Scanner, logger *zap.Logger) ([]labeler.SheetRow, error) {
	var rows []labeler.SheetRow
	for entry, err := range sc.Scan(ctx) {
		if err != nil {
			logger.Warn("skipping file", zap.String("path", entry.Path), zap.Error(err))
			continue
		}
		row := labeler.SheetRow{Path: entry.Path, Hash: entry.Hash}
		rec, err := store.Get(ctx, entry.Path)
		switch {
		case err == nil:
			row.Label = rec.Label
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fix := fs.Bool("fix", false, "rename mismatched files to their detected extension")
	_ = fs.Parse(reorderArgs(args))

	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	root, err := rootArg(fs, cfg)
	if err != nil {
		return err
	}
	report, err := checkImages(context.Background(), root, cfg.Indexer.IncludeHidden, *fix)
	if err != nil {
		return err
	}
	for _, line := range report.Lines {
		fmt.Println(line)
	}
	fmt.Printf("%d fixed, %d correct, %d mismatched, %d unknown\n",
		report.Fixed, report.Correct, report.Mismatched, report.Unknown)
	return nil
}

// checkReport summarizes a media check run.
type checkReport struct {
	Lines      []string
	Fixed      int
	Correct    int
	Mismatched int
	Unknown    int
}

// checkImages compares every image's extension with its content. Mismatches are renamed
// when fix is set; a rename that fails leaves the file counted as mismatched.
func checkImages(ctx context.Context, root string, includeHidden, fix bool) (*checkReport, error) {
	ex := extract.NewExtractor()
	var images []string
	for _, e := range ex.Extensions() {
		if ex.IsImage(e) {
			images = append(images, e)
		}
	}
	// No validator: a mismatched file must still be reported, not rejected.
	sc := &scanner.Scanner{Root: root, Extensions: images, IncludeHidden: includeHidden}

	var paths []string
	for entry, err := range sc.Scan(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		paths = append(paths, entry.AbsPath)
	}
	sort.Strings(paths)

	report := &checkReport{}
	for _, p := range paths {
		res, err := ex.CheckImage(p)
		if err != nil {
			report.Lines = append(report.Lines, err.Error())
			report.Unknown++
			continue
		}
		rel, _ := filepath.Rel(root, p)
		res.Path = filepath.ToSlash(rel)
		switch res.Status {
		case extract.CheckCorrect:
			report.Correct++
		case extract.CheckUnknown:
			report.Unknown++
			report.Lines = append(report.Lines, res.String())
		case extract.CheckMismatch:
			report.Lines = append(report.Lines, res.String())
			if !fix {
				report.Mismatched++
				continue
			}
			abs := res
			abs.Path = p
			target, err := extract.FixExtension(abs)
			if err != nil {
				report.Mismatched++
				report.Lines = append(report.Lines, "  "+err.Error())
				continue
			}
			report.Fixed++
			newRel, _ := filepath.Rel(root, target)
			report.Lines = append(report.Lines, "  renamed to "+filepath.ToSlash(newRel))
		}
	}
	return report, nil
}

func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	_ = fs.Parse(args)

	// stdout carries the protocol, so logs stay at warn level on stderr.
	cfg, _, logger, err := common.setup(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		return err
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return err
	}
	srv := mcp.NewServer(components.Engine, components.Pipeline, root, version, logger)
	return srv.Serve(context.Background())
}

// Components holds initialized services.
type Components struct {
	Store    storage.Store
	Embedder embedding.Embedder
	Labels   *keyword.LabelIndex
	Engine   *search.Engine
	Pipeline *indexer.Pipeline
}

// Close releases every component that was opened.
func (c *Components) Close() {
	if c.Labels != nil {
		_ = c.Labels.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// initializeComponents opens the store and label index and wires the provider, labeler,
// pipeline, and search engine. The label index is resynced from the store when it drifted.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Store: store}

	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	c.Embedder = embedder
	queryEmbedder, err := embedding.NewCachedEmbedder(embedder, cfg.Embedding.CacheSize)
	if err != nil {
		c.Close()
		return nil, err
	}

	labels, err := keyword.OpenLabelIndex(cfg.Storage.LabelIndexPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize label index: %w", err)
	}
	c.Labels = labels

	ex := extract.NewExtractor()
	lb, err := labeler.New(&cfg.Labels, ex, os.Stdin, os.Stderr)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Pipeline = indexer.NewPipeline(store, embedder, lb,
		indexer.WithLogger(logger),
		indexer.WithConcurrency(cfg.Indexer.Concurrency),
		indexer.WithRetry(retryConfig(&cfg.Indexer)),
		indexer.WithLabelIndex(labels),
		indexer.WithExtractor(ex),
		indexer.WithScanOptions(indexer.ScanOptions{
			Extensions:    cfg.Indexer.Extensions,
			IncludeHidden: cfg.Indexer.IncludeHidden,
		}),
	)
	if err := c.Pipeline.SyncLabelIndex(context.Background()); err != nil {
		logger.Warn("label index sync failed", zap.Error(err))
	}

	c.Engine = search.NewEngine(store, queryEmbedder,
		search.WithLogger(logger),
		search.WithDefaults(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
	)
	return c, nil
}

func retryConfig(cfg *config.IndexerConfig) indexer.RetryConfig {
	rc := indexer.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}
	if cfg.BaseDelayMs > 0 {
		rc.BaseDelay = time.Duration(cfg.BaseDelayMs) * time.Millisecond
	}
	if cfg.MaxDelayMs > 0 {
		rc.MaxDelay = time.Duration(cfg.MaxDelayMs) * time.Millisecond
	}
	return rc
}

func printUsage() {
	fmt.Println(`sense - find local files by what they are about

Usage:
  sense index [flags] [root]        Index new and changed files under root
  sense search [flags] <query>      Rank indexed files by semantic similarity
  sense find [flags] <words>        Keyword lookup over file labels
  sense serve [flags]               Start the HTTP API and watch directories
  sense watch [flags] [dirs...]     Watch directories in the foreground
  sense watch <add|remove|list>     Manage a running server's watched directories
  sense status [flags]              Show index size and configuration
  sense export [flags] [root]       Write a path,hash,label sheet for every file
  sense check [--fix] [root]        Report images whose extension disagrees with their content
  sense mcp [flags]                 Serve search and indexing as MCP tools over stdio
  sense version                     Show version
  sense help                        Show this help

Common Flags:
  --config string    Config file path (default: ./config.yaml, then ~/.sense/config.yaml)
  --debug            Enable debug logging

Index Flags:
  --rebuild          Clear the index first (required after changing the embedding model)
  --output string    text or json (default: text)

Search Flags:
  --limit int        Number of results (default from config)
  --ext string       Only files with this extension
  --pattern string   Only files matching this glob
  --output string    text, compact, or json (default: text)
  --server string    Query a running server instead of reading the index directly

Examples:
  sense index ~/Pictures
  sense search --limit 3 "dog on a beach"
  sense search --ext pdf --output json tax return 2023
  sense export > labels.csv
  sense check --fix ~/Pictures
  sense serve
  sense watch add ~/Documents`)
}
