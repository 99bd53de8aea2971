package app

import (
    "path/filepath"
    "strings"
)

// deriveOutputPath returns "<input without extension>.audit.json" next to
// the input file.
func deriveOutputPath(inputPath string) string {
    in := strings.TrimSpace(inputPath)
    if in == "" { return outputDefault }
    base := strings.TrimSuffix(in, filepath.Ext(in))
    if base == "" || strings.HasSuffix(base, string(filepath.Separator)) {
        base = filepath.Join(base, "listing")
    }
    return base + ".audit.json"
}
