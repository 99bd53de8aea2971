package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/salonaudit/internal/app"
)

// Exit codes: 0 on success, 2 when the listing was rejected, 1 otherwise.
const (
	exitFailed   = 1
	exitRejected = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath  string
		envFiles    string
		inputPath   string
		markupPath  string
		outputPath  string
		provider    string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		geminiKey   string
		temperature float64
		insecureTLS bool
		cacheOnly   bool
		language    string
		dryRun      bool
		verbose     bool
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		cacheStrict bool
		storeDir    string
		databaseURL string
		maxAttempts int
	)

	flag.StringVar(&configPath, "config", os.Getenv("SALONAUDIT_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files; later files win, missing files are skipped")
	flag.StringVar(&inputPath, "input", "listing.txt", "Path to the price list (text or HTML)")
	flag.StringVar(&markupPath, "markup", "", "Optional page markup used when the text parse finds too few services")
	flag.StringVar(&outputPath, "output", "", "Path to write the JSON result (default <input>.audit.json)")
	flag.StringVar(&provider, "llm.provider", "openai", "Model provider: openai or gemini")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Model name")
	flag.StringVar(&llmKey, "llm.key", "", "API key for the OpenAI-compatible server")
	flag.StringVar(&geminiKey, "gemini.key", "", "Gemini API key")
	flag.Float64Var(&temperature, "llm.temperature", 0, "Sampling temperature; 0 keeps the server default")
	flag.BoolVar(&insecureTLS, "llm.insecureTLS", false, "Skip TLS verification for the model server")
	flag.BoolVar(&cacheOnly, "llm.cacheOnly", false, "Answer model calls from cache only and fail on a miss")
	flag.StringVar(&language, "lang", "", "Optional report language hint, e.g. 'pl' or 'en'")
	flag.BoolVar(&dryRun, "dry-run", false, "Parse, validate and compute statistics without calling the model")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.StringVar(&cacheDir, "cache.dir", ".salonaudit-cache", "LLM cache directory path; empty disables the cache")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.StringVar(&storeDir, "store.dir", "", "Directory for persisted analysis records")
	flag.StringVar(&databaseURL, "store.db", "", "PostgreSQL URL for persisted analysis records")
	flag.IntVar(&maxAttempts, "max.attempts", 2, "Maximum attempts per job")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		log.Error().Err(err).Msg("load env files")
		os.Exit(exitFailed)
	}

	cfg := app.Config{
		InputPath:        inputPath,
		MarkupPath:       markupPath,
		OutputPath:       outputPath,
		LLMProvider:      provider,
		LLMBaseURL:       llmBaseURL,
		LLMModel:         llmModel,
		LLMAPIKey:        llmKey,
		GeminiAPIKey:     geminiKey,
		LLMTemperature:   temperature,
		LLMInsecureTLS:   insecureTLS,
		LLMCacheOnly:     cacheOnly,
		LanguageHint:     language,
		DryRun:           dryRun,
		Verbose:          verbose,
		CacheDir:         cacheDir,
		CacheMaxAge:      cacheMaxAge,
		CacheClear:       cacheClear,
		CacheStrictPerms: cacheStrict,
		StoreDir:         storeDir,
		DatabaseURL:      databaseURL,
		MaxAttempts:      maxAttempts,
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(exitFailed)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	res := run(ctx, cfg)
	stop()
	os.Exit(exitCode(res))
}

func run(ctx context.Context, cfg app.Config) app.JobResult {
	if err := app.ValidateConfig(cfg); err != nil {
		return app.JobResult{State: app.JobFailed, Err: err, Message: err.Error()}
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		err = fmt.Errorf("init app: %w", err)
		return app.JobResult{State: app.JobFailed, Err: err, Message: app.FailureMessage(err)}
	}
	defer a.Close()

	res := a.RunJob(ctx)
	if res.State == app.JobFailed && res.Message != "" {
		fmt.Fprintln(os.Stderr, res.Message)
	}
	return res
}

func exitCode(res app.JobResult) int {
	switch {
	case res.State == app.JobSucceeded:
		return 0
	case errors.Is(res.Err, app.ErrInvalidListing):
		return exitRejected
	default:
		return exitFailed
	}
}
