package audit

import (
	"regexp"
	"strings"
)

// field collects what follows one marker.
type field struct {
	value string
	items []string
}

var itemPrefixRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// scan splits a response into fields for the given markers. Markers match
// case-insensitively and may be wrapped in Markdown emphasis. A marker that
// appears twice keeps its first occurrence.
func scan(text string, markers ...string) map[string]*field {
	known := make(map[string]bool, len(markers))
	for _, m := range markers {
		known[m] = true
	}
	out := make(map[string]*field, len(markers))

	var current *field
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if name, value, ok := splitMarker(line, known); ok {
			if _, seen := out[name]; seen {
				current = nil
				continue
			}
			current = &field{value: value}
			out[name] = current
			continue
		}
		if current == nil {
			continue
		}
		if loc := itemPrefixRe.FindStringIndex(line); loc != nil {
			if item := strings.TrimSpace(line[loc[1]:]); item != "" {
				current.items = append(current.items, item)
			}
			continue
		}
		if len(current.items) == 0 {
			current.value = strings.TrimSpace(current.value + " " + line)
		}
	}
	return out
}

func splitMarker(line string, known map[string]bool) (string, string, bool) {
	clean := strings.NewReplacer("**", "", "__", "").Replace(strings.TrimLeft(line, "# "))
	i := strings.Index(clean, ":")
	if i <= 0 {
		return "", "", false
	}
	name := strings.ToUpper(strings.TrimSpace(clean[:i]))
	if !known[name] {
		return "", "", false
	}
	return name, strings.TrimSpace(clean[i+1:]), true
}

// parts splits an entry on FieldSeparator and trims every part.
func parts(entry string) []string {
	raw := strings.Split(entry, FieldSeparator)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func (f *field) text() string {
	if f == nil {
		return ""
	}
	return f.value
}

func (f *field) list() []string {
	if f == nil {
		return nil
	}
	return f.items
}
