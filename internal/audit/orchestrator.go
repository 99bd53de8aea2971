// Package audit turns a validated price list into an AuditReport through
// three short model calls whose answers use a line-oriented micro-format.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/salonaudit/internal/cache"
	"github.com/hyperifyio/salonaudit/internal/llm"
	"github.com/hyperifyio/salonaudit/internal/pricelist"
	"github.com/hyperifyio/salonaudit/internal/report"
)

// Stage names, also used as progress labels and log fields.
const (
	StageCore            = "core"
	StageRecommendations = "recommendations"
	StageGrowthTips      = "growth_tips"
)

// TotalSteps is the number of model calls per report.
const TotalSteps = 3

var (
	// ErrEmptyResponse is returned when a call yields no usable text.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrCacheMiss is returned in cache-only mode when a response is not cached.
	ErrCacheMiss = errors.New("cache-only: response not cached")
)

// Orchestrator issues the three calls in order. It has no timeout or retry
// of its own; cancel ctx to stop it.
type Orchestrator struct {
	Client       llm.Client
	Model        string
	Cache        *cache.LLMCache
	LanguageHint string
	Temperature  float32
	// CacheOnly, when true, returns from cache and fails fast if missing.
	CacheOnly bool
	// Progress, when set, is called before each call with a 1-based step.
	Progress func(step, total int, stage string)
}

// StagePrompt is the request of one call.
type StagePrompt struct {
	Stage  string
	System string
	User   string
}

// StagePrompts returns the three requests for doc in call order. All stages
// share the same user prompt.
func StagePrompts(doc pricelist.Document, languageHint string) []StagePrompt {
	user := buildUserPrompt(doc, languageHint)
	return []StagePrompt{
		{Stage: StageCore, System: coreSystemPrompt, User: user},
		{Stage: StageRecommendations, System: recommendationsSystemPrompt, User: user},
		{Stage: StageGrowthTips, System: growthTipsSystemPrompt, User: user},
	}
}

type cachedResponse struct {
	Content string `json:"content"`
}

// Generate produces a report for doc. Any failing call fails the whole
// generation and no partial report is returned.
func (o *Orchestrator) Generate(ctx context.Context, doc pricelist.Document) (report.AuditReport, error) {
	if o.Client == nil && !o.CacheOnly {
		return report.AuditReport{}, errors.New("audit orchestrator not configured: no client")
	}
	if strings.TrimSpace(o.Model) == "" {
		return report.AuditReport{}, errors.New("audit orchestrator not configured: no model")
	}
	stages := StagePrompts(doc, o.LanguageHint)
	answers := make([]string, len(stages))
	for i, st := range stages {
		if o.Progress != nil {
			o.Progress(i+1, TotalSteps, st.Stage)
		}
		out, err := o.complete(ctx, st.Stage, st.System, st.User)
		if err != nil {
			return report.AuditReport{}, fmt.Errorf("%s call: %w", st.Stage, err)
		}
		answers[i] = out
	}

	core := ParseCore(answers[0])
	recs := ParseRecommendations(answers[1])
	tips := ParseGrowthTips(answers[2])

	return report.AuditReport{
		OverallScore:       core.Score,
		GeneralFeedback:    core.Feedback,
		SalesPotential:     core.SalesPotential,
		Strengths:          core.Strengths,
		Weaknesses:         core.Weaknesses,
		Recommendations:    recs.Items,
		BeforeAfterExample: AnchorExample(recs.Example, doc.ServiceNames()),
		GrowthTips:         tips,
	}, nil
}

func (o *Orchestrator) complete(ctx context.Context, stage, system, user string) (string, error) {
	key := cache.KeyFrom(o.Model, GrammarVersion+"\n\n"+system+"\n\n"+user)
	if o.Cache != nil {
		if raw, ok, _ := o.Cache.Get(ctx, key); ok {
			var c cachedResponse
			if err := json.Unmarshal(raw, &c); err == nil && strings.TrimSpace(c.Content) != "" {
				log.Debug().Str("stage", stage).Msg("audit cache hit")
				return c.Content, nil
			}
		}
	}
	if o.CacheOnly {
		return "", ErrCacheMiss
	}

	// Log prompt skeleton only; the price list may contain client data
	log.Debug().Str("stage", stage).Str("model", o.Model).Int("system_len", len(system)).Int("user_len", len(user)).Msg("audit prompt")
	start := time.Now()
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: o.Temperature,
		N:           1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	log.Debug().Str("stage", stage).Dur("elapsed", time.Since(start)).Int("response_len", len(out)).Msg("audit response")

	if o.Cache != nil {
		if b, err := json.Marshal(cachedResponse{Content: out}); err == nil {
			_ = o.Cache.Save(ctx, key, b)
		}
	}
	return out, nil
}
