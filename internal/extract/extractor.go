package extract

import "github.com/hyperifyio/salonaudit/internal/pricelist"

// minPrimaryServices is the service count below which the markup fallback is
// attempted.
const minPrimaryServices = 3

// Extractor turns raw markup into a price list Document. Implementations must
// be deterministic and free of side effects.
type Extractor interface {
    Extract(markup string) pricelist.Document
}

// ServiceBlockExtractor reads repeating service containers via ServicesFromHTML.
type ServiceBlockExtractor struct{}

func (ServiceBlockExtractor) Extract(markup string) pricelist.Document {
    return ServicesFromHTML(markup)
}

// ReadableTextExtractor flattens the page with FromHTML and runs the text parser.
type ReadableTextExtractor struct{}

func (ReadableTextExtractor) Extract(markup string) pricelist.Document {
    d := FromHTML([]byte(markup))
    doc := pricelist.ParseText(d.Text)
    if doc.SalonName == "" {
        doc.SalonName = d.Title
    }
    return doc
}

// NeedsFallback reports whether the primary parse is too thin to analyze.
func NeedsFallback(primary pricelist.Document) bool {
    return len(primary.Categories) == 0 || primary.TotalServices < minPrimaryServices
}

// WithFallback returns the fallback extraction of markup in place of primary
// when primary is too thin and markup is available. The fallback result is
// never merged with the primary one. The boolean reports whether it was used.
func WithFallback(primary pricelist.Document, markup string, fallback Extractor) (pricelist.Document, bool) {
    if !NeedsFallback(primary) || markup == "" {
        return primary, false
    }
    if fallback == nil {
        fallback = ServiceBlockExtractor{}
    }
    return fallback.Extract(markup), true
}
