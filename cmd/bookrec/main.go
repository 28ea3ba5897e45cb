package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"bookrec/internal/catalog"
	"bookrec/internal/config"
	"bookrec/internal/domain"
	"bookrec/internal/httpapi"
	"bookrec/internal/logging"
	"bookrec/internal/mcp"
	"bookrec/internal/presenter"
	"bookrec/internal/service"
	"bookrec/internal/summarizer"
	"bookrec/internal/tui"
)

const usage = `Usage: bookrec [--config=config.yaml] <command> [flags]

Commands:
  tui         interactive recommender (default)
  recommend   one-shot recommendation: --title --mode --k --no-covers
  serve       HTTP JSON API
  mcp         MCP tool server on stdio
  import      copy a CSV catalog into SQLite: --csv --db
`

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/bookrec/config.yaml if not provided)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	cmd, args := "tui", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "tui":
		setupLogging(cfg.Log, io.Discard)
		runTUI(ctx, cfg)
	case "recommend":
		setupLogging(cfg.Log, os.Stderr)
		os.Exit(runRecommend(ctx, cfg, args))
	case "serve":
		setupLogging(cfg.Log, os.Stderr)
		runServe(ctx, cfg)
	case "mcp":
		setupLogging(cfg.Log, os.Stderr)
		runMCP(ctx, cfg)
	case "import":
		setupLogging(cfg.Log, os.Stderr)
		runImport(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// setupLogging writes to log.file when set, otherwise to fallback.
func setupLogging(lc config.LogConfig, fallback io.Writer) {
	out := fallback
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		out = f
	}
	logging.Init(logging.Config{Level: lc.Level, Format: lc.Format, Output: out})
}

func buildService(ctx context.Context, cfg *config.AppConfig) *service.Service {
	src, err := catalog.OpenSource(cfg.Catalog.Source, cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("catalog source")
	}
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog load failed")
	}
	svc, err := service.New(ctx, cat, service.Options{
		GenreStrategy: service.GenreStrategy(cfg.Index.GenreStrategy),
		DefaultK:      cfg.Recommend.DefaultK,
		MaxK:          cfg.Recommend.MaxK,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("index build failed")
	}
	return svc
}

func runTUI(ctx context.Context, cfg *config.AppConfig) {
	svc := buildService(ctx, cfg)
	cov := coverRenderer(cfg, false)
	p := presenter.New(io.Discard, svc.Catalog(), nil, summarizer.NewBlurb(), presenter.Options{
		BlurbSentences: cfg.Presenter.BlurbSentences,
	})
	opts := svc.Options()
	m := tui.New(svc, p, tui.Options{
		Mode:       domain.ModeBoth,
		K:          opts.DefaultK,
		MaxK:       opts.MaxK,
		Covers:     cov,
		CoverWidth: cfg.Covers.Width,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logging.Fatal().Err(err).Msg("tui")
	}
}

func runRecommend(ctx context.Context, cfg *config.AppConfig, args []string) int {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	title := fs.String("title", "", "Book title to recommend from")
	modeFlag := fs.String("mode", "both", "summary, genres or both")
	k := fs.Int("k", 0, "Results per ranking (0 uses recommend.default_k)")
	noCovers := fs.Bool("no-covers", false, "Do not download cover art")
	_ = fs.Parse(args)
	if *title == "" && fs.NArg() > 0 {
		*title = fs.Arg(0)
	}

	mode, err := domain.ParseMode(*modeFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	svc := buildService(ctx, cfg)
	p := presenter.New(os.Stdout, svc.Catalog(), coverRenderer(cfg, *noCovers), summarizer.NewBlurb(), presenter.Options{
		ShowCovers:     cfg.Covers.Enabled && !*noCovers,
		CoverWidth:     cfg.Covers.Width,
		BlurbSentences: cfg.Presenter.BlurbSentences,
	})
	rec, err := svc.Recommend(ctx, domain.Request{Title: *title, Mode: mode, K: *k})
	if err != nil {
		var rerr *domain.ResolutionError
		if errors.As(err, &rerr) {
			p.ShowResolution(rerr.Resolution)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}

	fmt.Printf("Because you liked %s by %s (%s, k=%d):\n\n", rec.Query.Title, rec.Query.Author, rec.Mode, rec.K)
	if err := p.ShowIDs(ctx, rec.IDs()); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s: %v\n", domain.ErrorKind(err), err)
		return 1
	}
	return 0
}

func runServe(ctx context.Context, cfg *config.AppConfig) {
	svc := buildService(ctx, cfg)
	h := httpapi.NewRouter(svc, httpapi.Options{RateLimitPerMinute: cfg.Server.RateLimitPerMinute})
	if err := httpapi.Serve(ctx, cfg.Server.Addr, h); err != nil {
		logging.Fatal().Err(err).Msg("http server")
	}
}

func runMCP(ctx context.Context, cfg *config.AppConfig) {
	svc := buildService(ctx, cfg)
	opts := svc.Options()
	srv := mcp.NewServer(svc, opts.DefaultK, opts.MaxK)
	if err := srv.Serve(ctx); err != nil {
		logging.Fatal().Err(err).Msg("mcp server")
	}
}

func runImport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	csvPath := fs.String("csv", "book_data.csv", "Source CSV catalog")
	dbPath := fs.String("db", "books.db", "Destination SQLite database")
	_ = fs.Parse(args)

	n, err := catalog.ImportCSV(ctx, *csvPath, *dbPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("import failed")
	}
	logging.Info().Int("books", n).Str("db", *dbPath).Msg("catalog imported")
}
