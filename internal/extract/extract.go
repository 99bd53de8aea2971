package extract

import (
    "bytes"
    "strings"

    "golang.org/x/net/html"
)

// Document is the readable form of a listing page.
type Document struct {
    Title string
    Text  string
}

// FromHTML converts a listing page into line-oriented text that the price
// list parser understands. It prefers <main> or <article>, falls back to
// <body>, skips navigation and consent banners, and writes headings with
// Markdown hash markers so sections survive as categories.
func FromHTML(input []byte) Document {
    node, err := html.Parse(bytes.NewReader(input))
    if err != nil || node == nil {
        return Document{}
    }

    title := strings.TrimSpace(findTitle(node))
    content := findFirst(node, "main")
    if content == nil {
        content = findFirst(node, "article")
    }
    if content == nil {
        content = findFirst(node, "body")
    }
    var b strings.Builder
    if content != nil {
        collectText(&b, content)
    }
    return Document{Title: title, Text: normalizeWhitespace(b.String())}
}

func findTitle(n *html.Node) string {
    head := findFirst(n, "head")
    if head == nil {
        return ""
    }
    t := findFirst(head, "title")
    if t == nil || t.FirstChild == nil {
        return ""
    }
    return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
    if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
        return n
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if res := findFirst(c, tag); res != nil {
            return res
        }
    }
    return nil
}

// headingLevel returns 1..6 for h1..h6 and 0 otherwise.
func headingLevel(name string) int {
    if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
        return int(name[1] - '0')
    }
    return 0
}

func collectText(b *strings.Builder, n *html.Node) {
    if n.Type == html.ElementNode {
        if isBoilerplateContainer(n) {
            return
        }
        name := strings.ToLower(n.Data)
        switch name {
        case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "form", "button":
            return
        case "br", "hr":
            b.WriteString("\n")
        case "p", "li", "tr", "div", "section", "dt", "dd":
            b.WriteString("\n")
        case "td", "th":
            b.WriteString(" ")
        }
        if lvl := headingLevel(name); lvl > 0 {
            // Headings are flattened onto a single line so the marker stays in front.
            text := collapseSpaces(strings.TrimSpace(nodeText(n)))
            if text != "" {
                b.WriteString("\n")
                b.WriteString(strings.Repeat("#", lvl))
                b.WriteString(" ")
                b.WriteString(text)
                b.WriteString("\n")
            }
            return
        }
    }

    if n.Type == html.TextNode {
        data := strings.ReplaceAll(n.Data, "\t", " ")
        data = strings.ReplaceAll(data, "\r", " ")
        data = strings.ReplaceAll(data, "\n", " ")
        b.WriteString(data)
    }

    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c)
    }

    if n.Type == html.ElementNode {
        switch strings.ToLower(n.Data) {
        case "p", "li", "tr", "div", "section", "dt", "dd":
            b.WriteString("\n")
        }
    }
}

func nodeText(n *html.Node) string {
    var b strings.Builder
    var walk func(*html.Node)
    walk = func(cur *html.Node) {
        if cur.Type == html.TextNode {
            b.WriteString(cur.Data)
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            walk(c)
        }
    }
    walk(n)
    return b.String()
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
    if n == nil || n.Type != html.ElementNode {
        return false
    }
    for _, attr := range n.Attr {
        key := strings.ToLower(attr.Key)
        if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
            continue
        }
        if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr", "rodo"}) {
            return true
        }
    }
    return false
}

func containsAny(s string, needles []string) bool {
    for _, n := range needles {
        if strings.Contains(s, n) {
            return true
        }
    }
    return false
}

func normalizeWhitespace(s string) string {
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            // Keep at most one consecutive blank
            if len(out) > 0 && out[len(out)-1] == "" {
                continue
            }
            out = append(out, "")
            continue
        }
        out = append(out, collapseSpaces(trimmed))
    }
    for len(out) > 0 && out[0] == "" {
        out = out[1:]
    }
    for len(out) > 0 && out[len(out)-1] == "" {
        out = out[:len(out)-1]
    }
    return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return b.String()
}
