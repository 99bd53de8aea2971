package cache

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "os"
    "path/filepath"
    "time"
)

// LLMCache stores model responses keyed by model name and prompt digest.
// Entries live under Dir/Namespace so that responses written for an older
// response format are never read back by a newer parser.
type LLMCache struct {
    Dir       string
    Namespace string
    // StrictPerms, when true, enforces 0700 on cache directories and 0600 on
    // files to provide at-rest protection via restricted permissions.
    StrictPerms bool
}

func (c *LLMCache) root() string {
    if c.Namespace == "" {
        return c.Dir
    }
    return filepath.Join(c.Dir, c.Namespace)
}

func (c *LLMCache) ensureDir() error {
    if c == nil || c.Dir == "" {
        return errors.New("cache dir not configured")
    }
    perm := os.FileMode(0o755)
    if c.StrictPerms {
        perm = 0o700
    }
    dir := c.root()
    if err := os.MkdirAll(dir, perm); err != nil {
        return err
    }
    // If directory already existed and StrictPerms is on, tighten perms
    if c.StrictPerms {
        for _, d := range []string{c.Dir, dir} {
            if info, err := os.Stat(d); err == nil && info.Mode()&0o777 != 0o700 {
                _ = os.Chmod(d, 0o700)
            }
        }
    }
    return nil
}

// KeyFrom builds a cache key from model and prompt digest.
func KeyFrom(model string, prompt string) string {
    h := sha256.Sum256([]byte(model + "\n\n" + prompt))
    return hex.EncodeToString(h[:])
}

func (c *LLMCache) pathFor(key string) string {
    return filepath.Join(c.root(), key+".json")
}

// Get returns cached bytes if present.
func (c *LLMCache) Get(_ context.Context, key string) ([]byte, bool, error) {
    if err := c.ensureDir(); err != nil {
        return nil, false, err
    }
    p := c.pathFor(key)
    b, err := os.ReadFile(p)
    if err != nil {
        return nil, false, nil
    }
    // Touch file mtime on access for LRU purposes
    now := time.Now()
    _ = os.Chtimes(p, now, now)
    return b, true, nil
}

// Save writes bytes to cache.
func (c *LLMCache) Save(_ context.Context, key string, data []byte) error {
    if err := c.ensureDir(); err != nil {
        return err
    }
    mode := os.FileMode(0o644)
    if c.StrictPerms {
        mode = 0o600
    }
    return os.WriteFile(c.pathFor(key), data, mode)
}
