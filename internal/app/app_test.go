package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/salonaudit/internal/storage"
	"github.com/hyperifyio/salonaudit/internal/validate"
)

const listing = `# Studio Bella

## Manicure
Manicure klasyczny 80 zł
Manicure hybrydowy od 120 zł

## Brwi
Henna brwi 30 zł
Regulacja brwi 25 zł
`

const (
	coreAnswer = "SCORE: 72\nFEEDBACK: Przejrzysty cennik 🎉\nPOTENTIAL: Wysoki | Dobre ceny.\nSTRENGTHS:\n- Jasne ceny\n- Krótka lista\n- Podział na kategorie\nWEAKNESSES:\n- Brak opisów | Klientka nie zna efektu\n- Ceny od | Niepewny koszt\n- Brak czasu | Trudno zaplanować wizytę\n"
	recsAnswer = "RECOMMENDATIONS:\n- Dodaj opisy\n- Podaj czas\n- Ustal ceny\n- Dodaj pakiety\n- Dodaj zdjęcia\nBEFORE: henna brwi\nAFTER: Henna brwi z regulacją\nWHY: Jasny efekt.\n"
	tipsAnswer = "TIPS:\n- SEO | High | Miasto w nazwach | Dodaj lokalizację.\n- Conversion | Medium | Pakiety | Łącz usługi.\n- Retention | Low | Karta | Co dziesiąta gratis.\n- Image | High | Zdjęcia | Pokaż efekty.\n"
)

func answerFor(system string) string {
	switch {
	case strings.Contains(system, "TIPS:"):
		return tipsAnswer
	case strings.Contains(system, "RECOMMENDATIONS:"):
		return recsAnswer
	default:
		return coreAnswer
	}
}

type fakeClient struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: answerFor(req.Messages[0].Content)}}}}, nil
}

func writeListing(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write listing: %v", err)
	}
	return p
}

func readBundle(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	return m
}

func TestRun_DryRunWritesStatisticsOnly(t *testing.T) {
	in := writeListing(t, "menu.txt", listing)
	client := &fakeClient{}
	a, err := New(context.Background(), Config{InputPath: in, DryRun: true}, WithClient(client))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("dry run must not call the model, got %d calls", client.calls)
	}
	m := readBundle(t, deriveOutputPath(in))
	if _, ok := m["report"]; ok {
		t.Fatalf("dry run bundle must not contain a report")
	}
	var st struct {
		TotalServices int `json:"totalServices"`
		FixedPrice    int `json:"servicesWithFixedPrice"`
	}
	if err := json.Unmarshal(m["statistics"], &st); err != nil {
		t.Fatalf("decode statistics: %v", err)
	}
	if st.TotalServices != 4 || st.FixedPrice != 3 {
		t.Fatalf("unexpected statistics: %s", m["statistics"])
	}
}

func TestRun_FullPipelinePersistsAndSanitizes(t *testing.T) {
	in := writeListing(t, "menu.txt", listing)
	out := filepath.Join(t.TempDir(), "nested", "audit.json")
	storeDir := t.TempDir()
	client := &fakeClient{}

	a, err := New(context.Background(), Config{InputPath: in, OutputPath: out, LLMModel: "test", StoreDir: storeDir}, WithClient(client))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", client.calls)
	}

	m := readBundle(t, out)
	var summary string
	if err := json.Unmarshal(m["summary"], &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary != "Przejrzysty cennik" {
		t.Fatalf("summary should drop pictographs, got %q", summary)
	}
	var rep struct {
		OverallScore int `json:"overallScore"`
		Before       struct {
			Before string `json:"before"`
		} `json:"beforeAfterExample"`
		GrowthTips []json.RawMessage `json:"growthTips"`
	}
	if err := json.Unmarshal(m["report"], &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.OverallScore != 72 || len(rep.GrowthTips) != 4 {
		t.Fatalf("unexpected report: %s", m["report"])
	}
	if rep.Before.Before != "Henna brwi" {
		t.Fatalf("before should be the exact service name, got %q", rep.Before.Before)
	}

	var meta manifestMeta
	if err := json.Unmarshal(m["manifest"], &meta); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if meta.RecordID == "" || meta.InputSHA256 == "" || meta.Budget.PromptTokens == 0 || !meta.Budget.Fits {
		t.Fatalf("manifest incomplete: %+v", meta)
	}
	fs := &storage.FileStore{Dir: storeDir}
	rec, err := fs.Load(meta.RecordID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if rec.Report.OverallScore != 72 || rec.Document.TotalServices != 4 {
		t.Fatalf("stored record mismatch: %+v", rec.Report)
	}
}

func TestRun_InvalidListingIsRejected(t *testing.T) {
	in := writeListing(t, "menu.txt", "## Zapraszamy\nManicure 80 zł\n")
	client := &fakeClient{}
	a, err := New(context.Background(), Config{InputPath: in, LLMModel: "test"}, WithClient(client))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	err = a.Run(context.Background())
	if !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("expected ErrInvalidListing, got %v", err)
	}
	ve, ok := validate.AsValidationError(err)
	if !ok || ve.Code != validate.TooFewServices {
		t.Fatalf("expected too-few-services validation error, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("rejected listing must not reach the model")
	}
	if _, statErr := os.Stat(deriveOutputPath(in)); !os.IsNotExist(statErr) {
		t.Fatalf("no bundle should be written for a rejected listing")
	}
}

func TestRun_HTMLInputUsesMarkupFallback(t *testing.T) {
	page := `<html><head><title>Salon Róża</title></head><body>
<div class="services-list">
  <div class="service-item">
    <h3 class="service-name">Strzyżenie damskie</h3>
    <span class="service-price">90 zł</span>
  </div>
  <div class="service-item">
    <h3 class="service-name">Strzyżenie męskie</h3>
    <span class="service-price">50 zł</span>
  </div>
  <div class="service-item">
    <h3 class="service-name">Modelowanie</h3>
    <span class="service-price">70 zł</span>
  </div>
</div>
</body></html>`
	in := writeListing(t, "page.html", page)
	a, err := New(context.Background(), Config{InputPath: in, DryRun: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	m := readBundle(t, deriveOutputPath(in))
	var doc struct {
		SalonName     string `json:"salonName"`
		TotalServices int    `json:"totalServiceCount"`
	}
	if err := json.Unmarshal(m["document"], &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.TotalServices != 3 || doc.SalonName != "Salon Róża" {
		t.Fatalf("unexpected document: %s", m["document"])
	}
}

func TestRun_OpenAICompatibleServer(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	callCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"test","object":"model"}]}`))
		case "/v1/chat/completions":
			var req openai.ChatCompletionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mu.Lock()
			calls++
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
				ID:      "cmpl",
				Object:  "chat.completion",
				Model:   req.Model,
				Choices: []openai.ChatCompletionChoice{{Index: 0, Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answerFor(req.Messages[0].Content)}, FinishReason: openai.FinishReasonStop}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	in := writeListing(t, "menu.txt", listing)
	cacheDir := t.TempDir()
	cfg := Config{InputPath: in, LLMModel: "test", LLMBaseURL: srv.URL + "/v1", LLMAPIKey: "k", CacheDir: cacheDir}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := callCount(); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}

	// A cache-only rerun replays every answer without the server.
	cfg.LLMCacheOnly = true
	cfg.LLMBaseURL = "http://127.0.0.1:1/v1"
	b, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new cache-only app: %v", err)
	}
	defer b.Close()
	if err := b.Run(context.Background()); err != nil {
		t.Fatalf("cache-only run: %v", err)
	}
	if n := callCount(); n != 3 {
		t.Fatalf("cache-only run must not call the server, got %d calls", n)
	}
}

func TestNew_CacheOnlyRequiresCacheDir(t *testing.T) {
	if _, err := New(context.Background(), Config{InputPath: "x", LLMCacheOnly: true}); err == nil {
		t.Fatalf("expected error without cache dir")
	}
}

type countingStore struct {
	mu    sync.Mutex
	saved []storage.Record
}

func (s *countingStore) Save(_ context.Context, rec storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, rec)
	return nil
}

func (s *countingStore) Close() error { return nil }

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// A run whose bundle cannot be written stores nothing, however often the job
// retries it.
func TestRunJob_FailedWriteStoresNoRecord(t *testing.T) {
	noDelay(t)
	in := writeListing(t, "menu.txt", listing)
	// A directory cannot be written as a file
	out := t.TempDir()
	store := &countingStore{}
	client := &fakeClient{}

	a, err := New(context.Background(), Config{InputPath: in, OutputPath: out, LLMModel: "test", MaxAttempts: 2}, WithClient(client), WithStore(store))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	res := a.RunJob(context.Background())
	if res.State != JobFailed || res.Attempts != 2 {
		t.Fatalf("expected failed job after 2 attempts, got %+v", res)
	}
	if n := store.count(); n != 0 {
		t.Fatalf("failed job must not persist records, got %d", n)
	}
}

func TestRunJob_SuccessStoresOneRecord(t *testing.T) {
	in := writeListing(t, "menu.txt", listing)
	store := &countingStore{}
	a, err := New(context.Background(), Config{InputPath: in, LLMModel: "test"}, WithClient(&fakeClient{}), WithStore(store))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	res := a.RunJob(context.Background())
	if res.State != JobSucceeded || res.Attempts != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n := store.count(); n != 1 {
		t.Fatalf("expected exactly one record, got %d", n)
	}
	var meta manifestMeta
	if err := json.Unmarshal(readBundle(t, deriveOutputPath(in))["manifest"], &meta); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if meta.RecordID != store.saved[0].ID.String() {
		t.Fatalf("manifest record id %q does not match stored %q", meta.RecordID, store.saved[0].ID)
	}
}

// The owner-facing text is logged under its own key so it does not collide
// with zerolog's message field.
func TestRun_RejectionLogsUserMessage(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = log.Output(&buf)
	t.Cleanup(func() { log.Logger = prev })

	in := writeListing(t, "menu.txt", "Zapraszamy!\n")
	a, err := New(context.Background(), Config{InputPath: in, DryRun: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("expected ErrInvalidListing, got %v", err)
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Count(line, `"message":`) > 1 {
			t.Fatalf("duplicate message key: %s", line)
		}
		var m map[string]any
		if json.Unmarshal([]byte(line), &m) != nil || m["message"] != "listing rejected" {
			continue
		}
		found = true
		if m["user_message"] != validate.UserMessage(validate.NoCategories) {
			t.Fatalf("user message missing: %s", line)
		}
	}
	if !found {
		t.Fatalf("rejection not logged: %s", buf.String())
	}
}
