// Package app wires the audit pipeline together: input loading, parsing,
// validation, statistics, model calls, persistence and the result bundle.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/salonaudit/internal/audit"
	"github.com/hyperifyio/salonaudit/internal/budget"
	"github.com/hyperifyio/salonaudit/internal/cache"
	"github.com/hyperifyio/salonaudit/internal/extract"
	"github.com/hyperifyio/salonaudit/internal/llm"
	"github.com/hyperifyio/salonaudit/internal/pricelist"
	"github.com/hyperifyio/salonaudit/internal/report"
	"github.com/hyperifyio/salonaudit/internal/stats"
	"github.com/hyperifyio/salonaudit/internal/storage"
	"github.com/hyperifyio/salonaudit/internal/validate"
)

// pipelineSteps counts the stage boundaries logged by Run.
const pipelineSteps = 8

type App struct {
	cfg      Config
	client   llm.Client
	closers  []func() error
	llmCache *cache.LLMCache
	store    storage.Store
}

// Option customizes New. Tests use it to inject fakes.
type Option func(*App)

// WithClient replaces the provider built from cfg.
func WithClient(c llm.Client) Option { return func(a *App) { a.client = c } }

// WithStore replaces the store built from cfg.
func WithStore(s storage.Store) Option { return func(a *App) { a.store = s } }

func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.OutputPath) == "" {
		cfg.OutputPath = deriveOutputPath(cfg.InputPath)
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOpenAI
	}
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	if cfg.CacheDir != "" {
		// Apply cache invalidation controls; failures only cost cache hits
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if n, err := cache.PurgeLLMCacheByAge(cfg.CacheDir, cfg.CacheMaxAge); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("purged expired LLM cache entries")
		}
		if n, err := cache.EnforceLLMCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("evicted LLM cache entries over limit")
		}
		a.llmCache = &cache.LLMCache{Dir: cfg.CacheDir, Namespace: audit.GrammarVersion, StrictPerms: cfg.CacheStrictPerms}
	} else if cfg.LLMCacheOnly {
		return nil, errors.New("cache-only mode requires a cache directory")
	}

	if a.client == nil && !cfg.DryRun && !cfg.LLMCacheOnly {
		if err := a.initProvider(ctx); err != nil {
			return nil, err
		}
	}

	if a.store == nil {
		switch {
		case cfg.DatabaseURL != "":
			pg, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("open store: %w", err)
			}
			a.store = pg
		case cfg.StoreDir != "":
			a.store = &storage.FileStore{Dir: cfg.StoreDir}
		}
	}
	if a.store != nil {
		a.closers = append(a.closers, a.store.Close)
	}
	return a, nil
}

func (a *App) initProvider(ctx context.Context) error {
	switch a.cfg.LLMProvider {
	case ProviderGemini:
		p, err := llm.NewGeminiProvider(ctx, a.cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		a.client = p
		a.closers = append(a.closers, p.Close)
	default:
		p := llm.NewOpenAIProvider(a.cfg.LLMBaseURL, a.cfg.LLMAPIKey, newLLMHTTPClient(a.cfg.LLMInsecureTLS))
		a.client = p
		// Quick connectivity check by listing models; warn only
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		models, err := p.ListModels(pctx)
		if err != nil {
			log.Warn().Err(err).Msg("LLM model list failed; continuing")
		} else if len(models.Models) > 0 {
			log.Info().Int("count", len(models.Models)).Msg("LLM models available")
		} else {
			log.Warn().Msg("LLM returned zero models")
		}
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}

// RunJob runs the pipeline under the retry policy and reports its terminal
// state.
func (a *App) RunJob(ctx context.Context) JobResult {
	res := RunWithRetry(ctx, a.cfg.MaxAttempts, a.Run)
	ev := log.Info()
	if res.State == JobFailed {
		ev = log.Error().Err(res.Err).Str("user_message", res.Message)
	}
	ev.Str("state", string(res.State)).Int("attempts", res.Attempts).Msg("job finished")
	return res
}

// Run performs one analysis of the configured listing and writes the result
// bundle. A rejected listing returns an error wrapping both ErrInvalidListing
// and the *validate.ValidationError.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.New().String()
	l := log.With().Str("run", runID).Logger()
	step := 0
	stage := func(name string) *zerolog.Event {
		step++
		return l.Info().Int("step", step).Int("total", pipelineSteps).Str("stage", name)
	}

	in, err := loadListing(a.cfg.InputPath, a.cfg.MarkupPath)
	if err != nil {
		return err
	}
	stage("load").Str("input", a.cfg.InputPath).Bool("markup", in.Markup != "").Msg("input loaded")

	doc := pricelist.ParseText(in.Text)
	if doc.SalonName == "" {
		doc.SalonName = strings.TrimSpace(in.Title)
	}
	stage("parse").Int("categories", len(doc.Categories)).Int("services", doc.TotalServices).Msg("listing parsed")

	doc, usedFallback := extract.WithFallback(doc, in.Markup, nil)
	if usedFallback && doc.SalonName == "" {
		doc.SalonName = strings.TrimSpace(in.Title)
	}
	stage("fallback").Bool("used", usedFallback).Int("services", doc.TotalServices).Msg("fallback checked")

	if err := validate.ValidateScrapedData(doc); err != nil {
		ev := l.Warn().Err(err)
		if ve, ok := validate.AsValidationError(err); ok {
			ev = ev.Str("code", string(ve.Code)).Str("user_message", validate.UserMessage(ve.Code))
		}
		ev.Msg("listing rejected")
		return fmt.Errorf("%w: %w", ErrInvalidListing, err)
	}
	est := promptBudget(a.cfg.LLMModel, doc, a.cfg.LanguageHint)
	if !est.Fits {
		l.Warn().Int("prompt_tokens", est.PromptTokens).Int("model_context", est.ModelContext).Msg("prompt may exceed the model context window")
	}
	stage("validate").Int("prompt_tokens", est.PromptTokens).Msg("listing accepted")

	st, rep, err := a.analyze(ctx, l, doc)
	if err != nil {
		return err
	}
	stage("analyze").Int("duplicates", len(st.DuplicateNames)).Bool("report", rep != nil).Msg("analysis complete")

	meta := manifestMeta{
		RunID:          runID,
		Provider:       a.cfg.LLMProvider,
		Model:          a.cfg.LLMModel,
		LLMBaseURL:     a.cfg.LLMBaseURL,
		GrammarVersion: audit.GrammarVersion,
		InputSHA256:    computeSHA256Hex(in.Raw),
		UsedFallback:   usedFallback,
		LLMCache:       a.llmCache != nil,
		DryRun:         a.cfg.DryRun,
		Budget:         est,
		BuildVersion:   BuildVersion,
		BuildCommit:    BuildCommit,
	}
	bundle := resultBundle{Document: doc, Statistics: st}

	if rep != nil {
		clean, err := finalizeReport(*rep)
		if err != nil {
			return fmt.Errorf("normalize report: %w", err)
		}
		stage("normalize").Int("score", clean.OverallScore).Int("tips", len(clean.GrowthTips)).Msg("report normalized")

		var rec *storage.Record
		if a.store != nil {
			r := storage.NewRecord(doc, clean, audit.GrammarVersion)
			rec = &r
			meta.RecordID = r.ID.String()
		}
		bundle.Report = &clean
		bundle.Summary = report.SanitizeAIResponse(clean.GeneralFeedback)

		// Saved last: only a run that otherwise succeeded leaves a record.
		meta.GeneratedAt = time.Now().UTC()
		bundle.Manifest = meta
		if err := writeBundle(a.cfg.OutputPath, bundle); err != nil {
			return err
		}
		stage("write").Str("out", a.cfg.OutputPath).Msg("wrote result bundle")

		if rec != nil {
			if err := a.store.Save(ctx, *rec); err != nil {
				return fmt.Errorf("persist: %w", err)
			}
		}
		stage("persist").Bool("stored", rec != nil).Str("record", meta.RecordID).Msg("persist checked")
		return nil
	}

	stage("normalize").Msg("dry run: no report")
	meta.GeneratedAt = time.Now().UTC()
	bundle.Manifest = meta
	if err := writeBundle(a.cfg.OutputPath, bundle); err != nil {
		return err
	}
	stage("write").Str("out", a.cfg.OutputPath).Msg("wrote result bundle")
	stage("persist").Msg("dry run: nothing stored")
	return nil
}

// analyze computes statistics while the model calls run. In dry-run mode
// only statistics are produced and the report is nil.
func (a *App) analyze(ctx context.Context, l zerolog.Logger, doc pricelist.Document) (stats.Statistics, *report.AuditReport, error) {
	var st stats.Statistics
	var rep *report.AuditReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st = stats.Compute(doc)
		return nil
	})
	if !a.cfg.DryRun {
		orch := &audit.Orchestrator{
			Client:       a.client,
			Model:        a.cfg.LLMModel,
			Cache:        a.llmCache,
			LanguageHint: a.cfg.LanguageHint,
			Temperature:  float32(a.cfg.LLMTemperature),
			CacheOnly:    a.cfg.LLMCacheOnly,
			Progress: func(step, total int, stage string) {
				l.Info().Int("call", step).Int("calls", total).Str("call_stage", stage).Msg("audit call")
			},
		}
		g.Go(func() error {
			r, err := orch.Generate(gctx, doc)
			if err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
			rep = &r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats.Statistics{}, nil, err
	}
	return st, rep, nil
}

// promptBudget sizes the largest of the audit calls for model.
func promptBudget(model string, doc pricelist.Document, lang string) budget.Estimate {
	prompts := audit.StagePrompts(doc, lang)
	estimates := make([]budget.Estimate, 0, len(prompts))
	for _, p := range prompts {
		estimates = append(estimates, budget.EstimateCall(model, p.System, p.User, budget.DefaultReservedOutput))
	}
	return budget.Largest(estimates)
}

// finalizeReport passes the assembled report through the same coercion and
// sanitization as any untrusted payload.
func finalizeReport(r report.AuditReport) (report.AuditReport, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return report.AuditReport{}, err
	}
	n, err := report.ParseAuditReport(raw)
	if err != nil {
		return report.AuditReport{}, err
	}
	return report.SanitizeReportData(n), nil
}

func writeBundle(path string, b resultBundle) error {
	data, err := marshalBundle(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
