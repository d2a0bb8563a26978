package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/scratchkit/scratch-downloader/internal/archive"
	"github.com/scratchkit/scratch-downloader/internal/config"
	"github.com/scratchkit/scratch-downloader/internal/download"
	httpx "github.com/scratchkit/scratch-downloader/internal/http"
	"github.com/scratchkit/scratch-downloader/internal/model"
	"github.com/scratchkit/scratch-downloader/internal/scratch"
	"github.com/scratchkit/scratch-downloader/internal/session"
	"github.com/scratchkit/scratch-downloader/internal/sink"
	"github.com/scratchkit/scratch-downloader/internal/source"
	"github.com/scratchkit/scratch-downloader/internal/telemetry"
)

func main() {
	// Command line flags
	var (
		startFlag    = flag.String("start-id", "", "Starting project ID, or \"random\" for a random start")
		amountFlag   = flag.Int64("amount", 0, "Number of successful downloads to aim for (0 = unlimited)")
		idsFileFlag  = flag.String("ids-file", "", "File with one project ID per line (overrides -start-id and explore)")
		queryFlag    = flag.String("query", "", "Explore search query (overrides config)")
		modeFlag     = flag.String("mode", "", "Explore mode: popular, trending or recent (overrides config)")
		languageFlag = flag.String("language", "", "Explore language (overrides config)")
		workersFlag  = flag.Int("workers", 0, "Worker count (overrides config, default = CPU count)")
		retryFlag    = flag.Int("retry", 0, "Attempts per project (overrides config)")
		timeoutFlag  = flag.Float64("timeout", 0, "Network timeout in seconds (overrides config)")
		noTorFlag    = flag.Bool("no-tor", false, "Do not route explore traffic through the Tor proxy")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		configFlag   = flag.String("config", "", "Path to config file")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Show the session plan without downloading")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.OutputDir = *outputFlag
	}
	if *queryFlag != "" {
		settings.ExploreQuery = *queryFlag
	}
	if *modeFlag != "" {
		settings.ExploreMode = *modeFlag
	}
	if *languageFlag != "" {
		settings.ExploreLanguage = *languageFlag
	}
	if *workersFlag > 0 {
		settings.Workers = *workersFlag
	}
	if *retryFlag > 0 {
		settings.MaxRetries = *retryFlag
	}
	if *timeoutFlag > 0 {
		settings.RequestTimeout = *timeoutFlag
	}
	if *noTorFlag {
		settings.UseTor = false
	}

	switch settings.ExploreMode {
	case "popular", "trending", "recent":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid explore mode %q (want popular, trending or recent)\n", settings.ExploreMode)
		os.Exit(1)
	}
	if *amountFlag < 0 {
		fmt.Fprintln(os.Stderr, "Error: -amount must not be negative")
		os.Exit(1)
	}

	sourceDesc := ""
	switch {
	case *idsFileFlag != "":
		sourceDesc = fmt.Sprintf("IDs from %s", *idsFileFlag)
	case *startFlag != "":
		sourceDesc = fmt.Sprintf("sequential from %s", *startFlag)
	default:
		sourceDesc = fmt.Sprintf("explore %q (%s, %s)", settings.ExploreQuery, settings.ExploreMode, settings.ExploreLanguage)
	}

	fmt.Println("🐱 Scratch Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if *dryRunFlag {
		fmt.Printf("Source:  %s\n", sourceDesc)
		fmt.Printf("Amount:  %s\n", amountText(*amountFlag))
		fmt.Printf("Workers: %d\n", settings.Workers)
		fmt.Printf("Retry:   %d attempt(s), %gs timeout\n", settings.MaxRetries, settings.RequestTimeout)
		fmt.Printf("Output:  %s\n", settings.OutputDir)
		fmt.Printf("Tor:     %v\n", settings.UseTor)
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	// Session setup: directories first, then the log that lives in them
	sess := session.New(settings.OutputDir, settings.StagingDir)
	if err := sess.Prepare(); err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing session directories: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.Create(sess.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	level := telemetry.LogLevel()
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := telemetry.NewLogger(logFile, level)

	metricsAddr := settings.MetricsAddr
	if env := os.Getenv("METRICS_ADDR"); env != "" {
		metricsAddr = env
	}
	telemetry.Serve(metricsAddr, logger)

	clientCfg := settings.ToClientConfig()
	clientCfg.HTTP = httpx.NewClient(httpx.Config{})
	clientCfg.ExploreHTTP = httpx.NewClient(httpx.Config{ProxyAddr: settings.ProxyAddr()})
	client := scratch.NewClient(clientCfg)

	// ID source priority: ids-file > start-id > explore
	var src source.Source
	switch {
	case *idsFileFlag != "":
		fileSrc, err := source.NewFileSource(*idsFileFlag, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening ids file: %v\n", err)
			os.Exit(1)
		}
		defer fileSrc.Close()
		src = fileSrc
	case *startFlag != "":
		start, err := parseStartID(*startFlag, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = source.NewSequenceSource(start, 0)
	default:
		src = source.NewExploreSource(source.ExploreConfig{
			Client:   client,
			Query:    settings.ExploreQuery,
			Mode:     settings.ExploreMode,
			Language: settings.ExploreLanguage,
			Count:    *amountFlag,
			Logger:   logger,
		})
	}

	ctx := context.Background()

	var postgres *sink.PostgresSink
	dsn := settings.PostgresDSN
	if env := os.Getenv("POSTGRES_DSN"); env != "" {
		dsn = env
	}
	if dsn != "" {
		postgres, err = sink.NewPostgresSink(ctx, dsn, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
	}

	recorder, err := sink.New(sink.Config{Session: sess, Logger: logger, Postgres: postgres})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session files: %v\n", err)
		os.Exit(1)
	}

	fetcher := download.NewFetcher(download.FetcherConfig{
		Client:   client,
		Packer:   archive.NewPacker(sess.StagingDir()),
		Session:  sess,
		Cooldown: settings.Cooldown(),
		MaxDelay: settings.MaxDelay(),
		Logger:   logger,
	})

	// Handle interrupts: first signal stops new dispatch, in-flight
	// downloads finish and are recorded
	stopper := download.NewStopper(logger)
	stopper.Install()
	defer stopper.Release()

	// Create manager with progress callback
	manager := download.NewManager(download.Config{
		Source:     src,
		Runner:     fetcher,
		Recorder:   recorder,
		Stopper:    stopper,
		Workers:    settings.Workers,
		Target:     *amountFlag,
		Timeout:    settings.Timeout(),
		MaxRetries: settings.MaxRetries,
		Logger:     logger,
		OnProgress: func(event download.ProgressEvent) {
			if event.Level == download.LevelVerbose && !*verboseFlag {
				return
			}

			prefix := ""
			switch event.Level {
			case download.LevelError:
				prefix = "❌ "
			case download.LevelWarning:
				prefix = "⚠️  "
			case download.LevelSuccess:
				prefix = "✅ "
			case download.LevelInfo:
				prefix = "ℹ️  "
			default:
				prefix = "   "
			}

			fmt.Println(prefix + event.Message)
		},
	})

	fmt.Printf("📥 Session %s: %s\n", sess.ID, sourceDesc)
	fmt.Println()

	if err := manager.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during session: %v\n", err)
		logger.Error("session run failed", "error", err)
	}

	summary := recorder.Summary()
	if err := recorder.Close(); err != nil {
		logger.Warn("closing session files", "error", err)
	}

	// Task failures never change the exit code; only startup errors do
	fmt.Println()
	fmt.Println("###############################################################")
	fmt.Println("##")
	fmt.Printf("##   SESSION %s SUMMARY\n", sess.ID)
	fmt.Printf("##   - %d projects downloaded.\n", summary.Successes)
	fmt.Printf("##   - %d projects failed.\n", summary.Failures)
	fmt.Printf("##   - Took %.2f seconds.\n", summary.Elapsed.Seconds())
	fmt.Println("##")
	fmt.Printf("##   Downloads: %s\n", sess.Dir())
	fmt.Printf("##   Summaries: %s\n", sess.SummaryDir())
	fmt.Println("##")
	fmt.Println("###############################################################")
}

// parseStartID resolves the -start-id flag: a positive integer, or a
// random starting point for "random".
func parseStartID(raw string, logger *slog.Logger) (model.ProjectID, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "random" || raw == "rand" {
		id := source.RandomStart()
		logger.Info("using random start id", "id", id)
		return id, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("start id must be a positive integer or \"random\"")
	}
	return model.ProjectID(n), nil
}

func amountText(amount int64) string {
	if amount == 0 {
		return "unlimited"
	}
	return strconv.FormatInt(amount, 10)
}
