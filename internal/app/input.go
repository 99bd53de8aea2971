package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/salonaudit/internal/extract"
)

// listingInput is the loaded source of one run.
type listingInput struct {
	// Text is the listing in the line-oriented text form the parser reads.
	Text string
	// Markup is raw page markup for the fallback extractor, if any.
	Markup string
	// Title comes from the HTML <title> when the input was markup.
	Title string
	// Raw is the unmodified input, hashed into the manifest.
	Raw []byte
}

// loadListing reads the input file. HTML input is flattened into text and
// also kept as fallback markup unless a separate markup file is given.
func loadListing(inputPath, markupPath string) (listingInput, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return listingInput{}, fmt.Errorf("read input: %w", err)
	}
	in := listingInput{Raw: raw}
	if looksLikeHTML(inputPath, raw) {
		d := extract.FromHTML(raw)
		in.Text = d.Text
		in.Title = d.Title
		in.Markup = string(raw)
	} else {
		in.Text = string(raw)
	}
	if strings.TrimSpace(markupPath) != "" {
		m, err := os.ReadFile(markupPath)
		if err != nil {
			return listingInput{}, fmt.Errorf("read markup: %w", err)
		}
		in.Markup = string(m)
	}
	return in, nil
}

func looksLikeHTML(path string, raw []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("<"))
}
