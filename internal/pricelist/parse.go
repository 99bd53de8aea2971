package pricelist

import (
	"regexp"
	"strings"
)

var (
	hashHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)[\s#]*$`)
	boldHeadingRe = regexp.MustCompile(`^\*\*([^*]+?)\*\*\s*:?$`)
	listMarkerRe  = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•+])\s+`)
	addressLineRe = regexp.MustCompile(`(?i)^\s*(?:adres|address)\s*[:\-]\s*(.+?)\s*$`)
	logoImageRe   = regexp.MustCompile(`!\[([^\]]*)\]\(\s*([^)\s]+)`)
)

const (
	minHeadingLen     = 2
	maxHeadingLen     = 100
	minServiceNameLen = 2
	maxServiceNameLen = 200
	minDescriptionLen = 10
	maxDescriptionLen = 500
)

// heading describes a recognized heading line.
type heading struct {
	level int // 1..6 for hash headings, 0 for bold-wrapped lines
	text  string
}

// ParseText converts a listing into a Document. It is deterministic and never
// fails: input without recognizable services yields an empty Document and the
// validator decides what to do with it.
//
// Headings (hash markers or a fully bold line) start categories; lines with a
// currency amount become services; the line right after a service becomes its
// description when it reads like prose. The first "# Name" heading before any
// category is taken as the salon name.
func ParseText(text string) Document {
	lines := splitLines(text)
	doc := Document{SourceText: text}

	var current *Category
	flush := func() {
		if current != nil && len(current.Services) > 0 {
			doc.Categories = append(doc.Categories, *current)
		}
		current = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if doc.SalonAddress == "" {
			if m := addressLineRe.FindStringSubmatch(line); len(m) == 2 {
				doc.SalonAddress = m[1]
				continue
			}
		}
		if doc.LogoURL == "" {
			if m := logoImageRe.FindStringSubmatch(line); len(m) == 3 && strings.Contains(strings.ToLower(m[1]), "logo") {
				doc.LogoURL = m[2]
				continue
			}
		}

		if h, ok := parseHeading(line); ok {
			if h.level == 1 && doc.SalonName == "" && current == nil && len(doc.Categories) == 0 {
				doc.SalonName = h.text
				continue
			}
			flush()
			current = &Category{Name: h.text}
			continue
		}

		svc, rest, ok := parseServiceLine(line)
		if !ok {
			continue
		}

		var next string
		if i+1 < len(lines) {
			next = strings.TrimSpace(lines[i+1])
		}
		nextIsPlain := next != "" && !isHeading(next) && !HasPrice(next)

		svc.Duration = FindDuration(rest)
		if svc.Duration == "" && nextIsPlain {
			svc.Duration = FindDuration(next)
		}
		if nextIsPlain {
			if n := runeLen(next); n >= minDescriptionLen && n <= maxDescriptionLen {
				svc.Description = next
				i++
			}
		}

		if current == nil {
			current = &Category{Name: DefaultCategoryName}
		}
		current.Services = append(current.Services, svc)
	}
	flush()

	doc.Recount()
	return doc
}

// parseServiceLine splits a line holding a price into a service and the text
// remaining after the price token.
func parseServiceLine(line string) (Service, string, bool) {
	token, start, end, ok := FindPrice(line)
	if !ok {
		return Service{}, "", false
	}
	name := CleanServiceName(line[:start])
	if !ValidServiceName(name) {
		return Service{}, "", false
	}
	return Service{Name: name, Price: token}, line[end:], true
}

// CleanServiceName strips list numbering, emphasis markers and trailing
// separators from the text preceding a price.
func CleanServiceName(s string) string {
	s = listMarkerRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " \t-–—:|.")
	return strings.TrimSpace(s)
}

// ValidServiceName reports whether name has an acceptable length.
func ValidServiceName(name string) bool {
	n := runeLen(name)
	return n >= minServiceNameLen && n <= maxServiceNameLen
}

func parseHeading(line string) (heading, bool) {
	// A line carrying a price is always a service, even when it is bold.
	if HasPrice(line) {
		return heading{}, false
	}
	var h heading
	if m := hashHeadingRe.FindStringSubmatch(line); len(m) == 3 {
		h = heading{level: len(m[1]), text: m[2]}
	} else if m := boldHeadingRe.FindStringSubmatch(line); len(m) == 2 {
		h = heading{level: 0, text: m[1]}
	} else {
		return heading{}, false
	}
	h.text = strings.TrimSpace(strings.Trim(strings.TrimSpace(h.text), "*_:"))
	if n := runeLen(h.text); n < minHeadingLen || n > maxHeadingLen {
		return heading{}, false
	}
	return h, true
}

func isHeading(line string) bool {
	_, ok := parseHeading(line)
	return ok
}

// splitLines splits on LF, CRLF and lone CR. Lines of any length are kept.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
