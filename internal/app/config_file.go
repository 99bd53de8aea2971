package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
    Input  string `yaml:"input" json:"input"`
    Markup string `yaml:"markup" json:"markup"`
    Output string `yaml:"output" json:"output"`

    LLM struct {
        Provider    string  `yaml:"provider" json:"provider"`
        BaseURL     string  `yaml:"base" json:"base"`
        Model       string  `yaml:"model" json:"model"`
        APIKey      string  `yaml:"key" json:"key"`
        GeminiKey   string  `yaml:"geminiKey" json:"geminiKey"`
        Temperature float64 `yaml:"temperature" json:"temperature"`
        InsecureTLS bool    `yaml:"insecureTLS" json:"insecureTLS"`
        CacheOnly   bool    `yaml:"cacheOnly" json:"cacheOnly"`
    } `yaml:"llm" json:"llm"`

    Language    string `yaml:"language" json:"language"`
    DryRun      bool   `yaml:"dryRun" json:"dryRun"`
    Verbose     bool   `yaml:"verbose" json:"verbose"`
    MaxAttempts int    `yaml:"maxAttempts" json:"maxAttempts"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
        MaxBytes    int64         `yaml:"maxBytes" json:"maxBytes"`
        MaxCount    int           `yaml:"maxCount" json:"maxCount"`
    } `yaml:"cache" json:"cache"`

    Store struct {
        Dir         string `yaml:"dir" json:"dir"`
        DatabaseURL string `yaml:"databaseURL" json:"databaseURL"`
    } `yaml:"store" json:"store"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := filepath.Ext(path); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// Flag defaults that file config may replace when the flag was not changed.
const (
    inputDefault       = "listing.txt"
    outputDefault      = "audit.json"
    cacheDirDefault    = ".salonaudit-cache"
    maxAttemptsDefault = 2
    providerDefault    = ProviderOpenAI
)

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if (cfg.InputPath == "" || cfg.InputPath == inputDefault) && fc.Input != "" { cfg.InputPath = fc.Input }
    if cfg.MarkupPath == "" && fc.Markup != "" { cfg.MarkupPath = fc.Markup }
    if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output != "" { cfg.OutputPath = fc.Output }

    if (cfg.LLMProvider == "" || cfg.LLMProvider == providerDefault) && fc.LLM.Provider != "" { cfg.LLMProvider = fc.LLM.Provider }
    if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" && fc.LLM.Model != "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" { cfg.LLMAPIKey = fc.LLM.APIKey }
    if cfg.GeminiAPIKey == "" && fc.LLM.GeminiKey != "" { cfg.GeminiAPIKey = fc.LLM.GeminiKey }
    if cfg.LLMTemperature == 0 && fc.LLM.Temperature > 0 { cfg.LLMTemperature = fc.LLM.Temperature }
    if !cfg.LLMInsecureTLS && fc.LLM.InsecureTLS { cfg.LLMInsecureTLS = true }
    if !cfg.LLMCacheOnly && fc.LLM.CacheOnly { cfg.LLMCacheOnly = true }

    if cfg.LanguageHint == "" && fc.Language != "" { cfg.LanguageHint = fc.Language }
    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }
    if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == maxAttemptsDefault) && fc.MaxAttempts > 0 { cfg.MaxAttempts = fc.MaxAttempts }

    if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }
    if cfg.CacheMaxBytes == 0 && fc.Cache.MaxBytes > 0 { cfg.CacheMaxBytes = fc.Cache.MaxBytes }
    if cfg.CacheMaxCount == 0 && fc.Cache.MaxCount > 0 { cfg.CacheMaxCount = fc.Cache.MaxCount }

    if cfg.StoreDir == "" && fc.Store.Dir != "" { cfg.StoreDir = fc.Store.Dir }
    if cfg.DatabaseURL == "" && fc.Store.DatabaseURL != "" { cfg.DatabaseURL = fc.Store.DatabaseURL }
}

// ValidateConfig performs minimal schema validation for required settings.
// For dry-run, LLM settings may be omitted. An empty output path is derived
// from the input later.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.InputPath) == "" {
        return errors.New("config: input path is required")
    }
    switch cfg.LLMProvider {
    case "", ProviderOpenAI, ProviderGemini:
    default:
        return fmt.Errorf("config: unknown llm.provider %q", cfg.LLMProvider)
    }
    if !cfg.DryRun {
        if strings.TrimSpace(cfg.LLMModel) == "" {
            return errors.New("config: llm.model is required (or set LLM_MODEL)")
        }
        if cfg.LLMProvider == ProviderGemini && strings.TrimSpace(cfg.GeminiAPIKey) == "" && !cfg.LLMCacheOnly {
            return errors.New("config: llm.geminiKey is required for the gemini provider (or set GEMINI_API_KEY)")
        }
    }
    if cfg.MaxAttempts < 0 || cfg.LLMTemperature < 0 || cfg.CacheMaxBytes < 0 || cfg.CacheMaxCount < 0 {
        return errors.New("config: negative values are not allowed")
    }
    return nil
}
