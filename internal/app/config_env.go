package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, envKey string) {
        if *dst == "" { *dst = os.Getenv(envKey) }
    }
    setString(&cfg.LLMProvider, "LLM_PROVIDER")
    setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
    setString(&cfg.LLMModel, "LLM_MODEL")
    setString(&cfg.LLMAPIKey, "LLM_API_KEY")
    setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
    setString(&cfg.CacheDir, "CACHE_DIR")
    setString(&cfg.LanguageHint, "LANGUAGE")
    setString(&cfg.DatabaseURL, "DATABASE_URL")
    setString(&cfg.StoreDir, "STORE_DIR")
    setString(&cfg.MarkupPath, "MARKUP_FILE")

    if cfg.MaxAttempts == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_ATTEMPTS"))); err == nil && n > 0 {
            cfg.MaxAttempts = n
        }
    }
    if cfg.LLMTemperature == 0 {
        if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")), 64); err == nil && f >= 0 {
            cfg.LLMTemperature = f
        }
    }

    if cfg.CacheMaxBytes == 0 {
        if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("CACHE_MAX_BYTES")), 10, 64); err == nil && n > 0 {
            cfg.CacheMaxBytes = n
        }
    }
    if cfg.CacheMaxCount == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("CACHE_MAX_COUNT"))); err == nil && n > 0 {
            cfg.CacheMaxCount = n
        }
    }

    // Optional durations
    if cfg.CacheMaxAge == 0 {
        if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                cfg.CacheMaxAge = d
            }
        }
    }

    // Booleans
    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.LLMCacheOnly, "LLM_CACHE_ONLY")
    setBool(&cfg.LLMInsecureTLS, "LLM_INSECURE_TLS")
}
