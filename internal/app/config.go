package app

import "time"

// Provider names accepted in Config.LLMProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds runtime configuration for the application.
type Config struct {
	// InputPath is a text or HTML listing. MarkupPath optionally points to
	// raw page markup used only when the text parse finds too little.
	InputPath  string
	MarkupPath string
	OutputPath string

	// LLM
	LLMProvider    string
	LLMBaseURL     string
	LLMModel       string
	LLMAPIKey      string
	GeminiAPIKey   string
	LLMInsecureTLS bool
	LLMTemperature float64
	LanguageHint   string
	LLMCacheOnly   bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxCount    int

	// Persistence: DatabaseURL wins over StoreDir when both are set.
	DatabaseURL string
	StoreDir    string

	// Behavior
	MaxAttempts int
	DryRun      bool
	Verbose     bool
}
