package cache

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "testing"
    "time"
)

func TestLLMCache_SaveGet(t *testing.T) {
    tmp := t.TempDir()
    c := &LLMCache{Dir: tmp}
    key := KeyFrom("model", "prompt")
    data := []byte(`{"content":"SCORE: 70"}`)
    if err := c.Save(context.Background(), key, data); err != nil {
        t.Fatalf("save: %v", err)
    }
    got, ok, err := c.Get(context.Background(), key)
    if err != nil || !ok {
        t.Fatalf("get: %v ok=%v", err, ok)
    }
    if string(got) != string(data) {
        t.Fatalf("mismatch")
    }
}

func TestLLMCache_NamespacesAreIsolated(t *testing.T) {
    tmp := t.TempDir()
    v1 := &LLMCache{Dir: tmp, Namespace: "microformat-v1"}
    v2 := &LLMCache{Dir: tmp, Namespace: "microformat-v2"}
    key := KeyFrom("m", "p")
    if err := v1.Save(context.Background(), key, []byte("old")); err != nil {
        t.Fatalf("save: %v", err)
    }
    if _, ok, _ := v2.Get(context.Background(), key); ok {
        t.Fatal("expected miss in a different namespace")
    }
    if _, err := os.Stat(filepath.Join(tmp, "microformat-v1", key+".json")); err != nil {
        t.Fatalf("expected entry under namespace dir: %v", err)
    }
}

func TestLLMCache_Unconfigured(t *testing.T) {
    var c *LLMCache
    if _, _, err := c.Get(context.Background(), "k"); err == nil {
        t.Fatal("expected error for nil cache")
    }
}

func TestLLMCache_LRUEnforcement(t *testing.T) {
    tmp := t.TempDir()
    c := &LLMCache{Dir: tmp}
    // Create three entries
    keys := []string{KeyFrom("m", "p1"), KeyFrom("m", "p2"), KeyFrom("m", "p3")}
    for i, k := range keys {
        if err := c.Save(context.Background(), k, []byte(fmt.Sprintf("%d", i))); err != nil {
            t.Fatalf("save %d: %v", i, err)
        }
        // Ensure distinct mtimes by sleeping a tiny amount
        time.Sleep(10 * time.Millisecond)
    }
    // Touch p1 to be most recently used
    if _, ok, _ := c.Get(context.Background(), keys[0]); !ok {
        t.Fatal("expected hit")
    }
    // Enforce count=2 should evict p2, the least recently used
    removed, err := EnforceLLMCacheLimits(tmp, 0, 2)
    if err != nil {
        t.Fatalf("enforce: %v", err)
    }
    if removed != 1 {
        t.Fatalf("expected 1 removed, got %d", removed)
    }
    if _, ok, _ := c.Get(context.Background(), keys[1]); ok {
        t.Fatal("expected least recently used entry evicted")
    }
    if _, ok, _ := c.Get(context.Background(), keys[0]); !ok {
        t.Fatal("expected touched entry kept")
    }
}

func TestPurgeLLMCacheByAge(t *testing.T) {
    tmp := t.TempDir()
    c := &LLMCache{Dir: tmp, Namespace: "ns"}
    oldKey, newKey := KeyFrom("m", "old"), KeyFrom("m", "new")
    for _, k := range []string{oldKey, newKey} {
        if err := c.Save(context.Background(), k, []byte("x")); err != nil {
            t.Fatalf("save: %v", err)
        }
    }
    past := time.Now().Add(-48 * time.Hour)
    if err := os.Chtimes(filepath.Join(tmp, "ns", oldKey+".json"), past, past); err != nil {
        t.Fatalf("chtimes: %v", err)
    }
    removed, err := PurgeLLMCacheByAge(tmp, 24*time.Hour)
    if err != nil {
        t.Fatalf("purge: %v", err)
    }
    if removed != 1 {
        t.Fatalf("expected 1 removed, got %d", removed)
    }
}

func TestClearDir(t *testing.T) {
    tmp := filepath.Join(t.TempDir(), "llm")
    c := &LLMCache{Dir: tmp}
    if err := c.Save(context.Background(), "k", []byte("x")); err != nil {
        t.Fatalf("save: %v", err)
    }
    if err := ClearDir(tmp); err != nil {
        t.Fatalf("clear: %v", err)
    }
    if _, ok, _ := c.Get(context.Background(), "k"); ok {
        t.Fatal("expected empty cache after clear")
    }
    if err := ClearDir("  "); err == nil {
        t.Fatal("expected error for empty dir")
    }
}
