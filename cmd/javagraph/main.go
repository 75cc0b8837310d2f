// Command javagraph parses a Java source tree into a static
// dependency graph: nodes (classes, interfaces, methods, constructors,
// fields) and typed edges (calls, instantiates, extends, implements,
// overrides, uses), written as the three JSONL/JSON streams of §6.2
// and, optionally, persisted to SurrealDB for the serve subcommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/javagraph/javagraph/internal/config"
	"github.com/javagraph/javagraph/internal/discovery"
	"github.com/javagraph/javagraph/internal/emit"
	"github.com/javagraph/javagraph/internal/mcpserver"
	"github.com/javagraph/javagraph/internal/pipeline"
	"github.com/javagraph/javagraph/internal/store"
	"github.com/javagraph/javagraph/internal/watch"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "watch":
		watchCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "version":
		fmt.Println("javagraph v0.1.0")
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func analyzeCmd(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	exclude := fs.String("exclude", "", "Comma-separated additional exclude patterns")
	persist := fs.Bool("persist", false, "Also write the graph to the configured SurrealDB store")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Println("Usage: javagraph analyze [options] <directory>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	dir := remaining[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if warnings := config.Validate(cfg); len(warnings) > 0 {
		for _, w := range warnings {
			log.Printf("Warning: config: %s", w)
		}
	}

	excludePatterns := append([]string{}, cfg.Analyzer.ExcludePatterns...)
	if *exclude != "" {
		excludePatterns = append(excludePatterns, splitCSV(*exclude)...)
	}

	files, err := discovery.Walk(dir, excludePatterns)
	if err != nil {
		log.Fatalf("failed to discover source files: %v", err)
	}
	fmt.Printf("Analyzing %d Java files under %s\n", len(files), dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyInterrupt(cancel)

	result, err := pipeline.Analyze(ctx, files, cfg.Analyzer.Workers)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	for _, d := range result.Diagnostics {
		log.Printf("Warning: %s: %s: %s", d.Kind, d.FilePath, d.Message)
	}

	if err := writeOutputs(cfg, result); err != nil {
		log.Fatalf("failed to write output streams: %v", err)
	}

	fmt.Printf("Wrote %d nodes and %d edges to %s\n",
		result.Graph.NodeCount(), result.Graph.EdgeCount(), cfg.Output.Dir)

	if *persist {
		if err := persistGraph(ctx, cfg, result); err != nil {
			log.Fatalf("failed to persist graph: %v", err)
		}
		fmt.Println("Persisted graph to SurrealDB")
	}
}

func watchCmd(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fmt.Println("Usage: javagraph watch [options] <directory>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	dir := remaining[0]

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyInterrupt(cancel)

	var st *store.Store
	if cfg.Database.Enabled {
		st, err = openStore(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		defer st.Close()
	} else {
		log.Println("Warning: database.enabled is false; watch will re-analyze files but not persist results")
	}

	w, err := watch.New(watch.Config{
		Store:           st,
		ExcludePatterns: cfg.Analyzer.ExcludePatterns,
		Workers:         cfg.Analyzer.Workers,
		DebounceMs:      cfg.Analyzer.WatcherDebounceMs,
	})
	if err != nil {
		log.Fatalf("failed to create watcher: %v", err)
	}

	fmt.Printf("Watching %s for changes (debounce %dms)...\n", dir, cfg.Analyzer.WatcherDebounceMs)
	if err := w.Watch(ctx, []string{dir}); err != nil && err != context.Canceled {
		log.Fatalf("watch failed: %v", err)
	}
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	mode := fs.String("mode", "", "Transport: stdio or http (default from config)")
	port := fs.Int("port", 0, "HTTP server port (default from config)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	transport := cfg.Server.Mode
	if *mode != "" {
		transport = *mode
	}
	servePort := cfg.Server.Port
	if *port > 0 {
		servePort = *port
	}

	if !cfg.Database.Enabled {
		log.Fatalf("serve requires database.enabled = true (a store to query)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifyInterrupt(cancel)

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	srv := mcpserver.New(st)

	switch transport {
	case "stdio":
		if err := srv.ServeStdio(ctx); err != nil {
			log.Fatalf("server error: %v", err)
		}
	case "http", "sse", "":
		if err := srv.ServeHTTP(ctx, servePort); err != nil {
			log.Fatalf("server error: %v", err)
		}
	default:
		log.Fatalf("unknown transport %q", transport)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, store.Config{
		URL:       cfg.Database.SurrealDB.URL,
		Namespace: cfg.Database.SurrealDB.Namespace,
		Database:  cfg.Database.SurrealDB.Database,
		Username:  cfg.Database.SurrealDB.Username,
		Password:  cfg.Database.SurrealDB.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return st, nil
}

func persistGraph(ctx context.Context, cfg *config.Config, result *pipeline.Result) error {
	if !cfg.Database.Enabled {
		return fmt.Errorf("database.enabled is false in config")
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.StoreGraph(ctx, result.Graph)
}

func writeOutputs(cfg *config.Config, result *pipeline.Result) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	nodesPath := filepath.Join(cfg.Output.Dir, cfg.Output.NodesFile)
	edgesPath := filepath.Join(cfg.Output.Dir, cfg.Output.EdgesFile)
	symbolsPath := filepath.Join(cfg.Output.Dir, cfg.Output.SymbolsFile)

	nodes := result.Graph.Nodes()
	edges := result.Graph.Edges()

	if err := writeFileWith(nodesPath, func(f *os.File) error { return emit.Nodes(f, nodes) }); err != nil {
		return err
	}
	if err := writeFileWith(edgesPath, func(f *os.File) error { return emit.Edges(f, edges) }); err != nil {
		return err
	}
	if err := writeFileWith(symbolsPath, func(f *os.File) error { return emit.SymbolTable(f, nodes) }); err != nil {
		return err
	}
	return nil
}

func writeFileWith(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func notifyInterrupt(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func printHelp() {
	fmt.Print(`javagraph - static dependency graph analyzer for Java

Commands:
  analyze <dir>   Parse <dir>, write nodes.jsonl/edges.jsonl/symbols.json
  watch <dir>     Re-analyze .java files under <dir> as they change on disk
  serve           Start the MCP query server over the persisted graph
  version         Show version
  help            Show this help

Analyze Options:
  --config    Path to config file
  --exclude   Comma-separated additional exclude patterns
  --persist   Also write the graph to the configured SurrealDB store

Watch Options:
  --config    Path to config file

Serve Options:
  --config    Path to config file
  --mode      Transport: stdio or http (default from config)
  --port      HTTP server port (default from config)

Environment Variables:
  JAVAGRAPH_OUTPUT_DIR          Output directory override
  JAVAGRAPH_WORKERS             Worker pool size override
  JAVAGRAPH_SURREALDB_URL       SurrealDB connection URL
  JAVAGRAPH_SURREALDB_USER      SurrealDB username
  JAVAGRAPH_SURREALDB_PASSWORD  SurrealDB password
  JAVAGRAPH_SERVER_PORT         MCP server port override
`)
}
