// Package stats computes deterministic quality metrics for a price list.
// Nothing here calls a model or touches I/O.
package stats

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hyperifyio/salonaudit/internal/pricelist"
)

const (
	// OversizedThreshold is the service count above which a category is too
	// long to scan comfortably.
	OversizedThreshold = 20
	// UndersizedMax is the largest service count of an undersized category.
	UndersizedMax = 2
)

// NoCategoryName labels the placeholder used when there are no categories.
const NoCategoryName = "Brak"

// CategorySize names a category together with its service count.
type CategorySize struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics is derived per run and never stored on its own.
type Statistics struct {
	TotalServices          int          `json:"totalServices"`
	TotalCategories        int          `json:"totalCategories"`
	WithDescription        int          `json:"servicesWithDescription"`
	WithDuration           int          `json:"servicesWithDuration"`
	FixedPrice             int          `json:"servicesWithFixedPrice"`
	AvgServicesPerCategory float64      `json:"avgServicesPerCategory"`
	LargestCategory        CategorySize `json:"largestCategory"`
	SmallestCategory       CategorySize `json:"smallestCategory"`
	DuplicateNames         []string     `json:"duplicateNames"`
	EmptyCategories        []string     `json:"emptyCategories"`
	OversizedCategories    []string     `json:"oversizedCategories"`
	UndersizedCategories   []string     `json:"undersizedCategories"`
}

var fromMarkerRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:od|from)(?:[^\p{L}]|$)`)

// IsFixedPrice reports whether price names one concrete amount. A "from"
// marker or a range separator (" - " or an en dash) makes it not fixed.
func IsFixedPrice(price string) bool {
	p := strings.TrimSpace(price)
	if p == "" {
		return false
	}
	if fromMarkerRe.MatchString(p) {
		return false
	}
	if strings.Contains(p, " - ") || strings.Contains(p, "–") {
		return false
	}
	return true
}

// Compute derives Statistics from doc. Empty input yields zero counts, empty
// lists and the placeholder category.
func Compute(doc pricelist.Document) Statistics {
	st := Statistics{
		TotalCategories:      len(doc.Categories),
		DuplicateNames:       []string{},
		EmptyCategories:      []string{},
		OversizedCategories:  []string{},
		UndersizedCategories: []string{},
	}

	folder := cases.Fold()
	seen := make(map[string]int)
	first := make(map[string]string)
	for _, c := range doc.Categories {
		n := len(c.Services)
		st.TotalServices += n
		switch {
		case n == 0:
			st.EmptyCategories = append(st.EmptyCategories, c.Name)
		case n > OversizedThreshold:
			st.OversizedCategories = append(st.OversizedCategories, c.Name)
		case n <= UndersizedMax:
			st.UndersizedCategories = append(st.UndersizedCategories, c.Name)
		}
		for _, s := range c.Services {
			if strings.TrimSpace(s.Description) != "" {
				st.WithDescription++
			}
			if strings.TrimSpace(s.Duration) != "" {
				st.WithDuration++
			}
			if IsFixedPrice(s.Price) {
				st.FixedPrice++
			}
			key := folder.String(strings.Join(strings.Fields(s.Name), " "))
			if key == "" {
				continue
			}
			seen[key]++
			switch seen[key] {
			case 1:
				first[key] = strings.TrimSpace(s.Name)
			case 2:
				st.DuplicateNames = append(st.DuplicateNames, first[key])
			}
		}
	}

	if st.TotalCategories > 0 {
		avg := float64(st.TotalServices) / float64(st.TotalCategories)
		st.AvgServicesPerCategory = math.Round(avg*10) / 10
	}
	st.LargestCategory, st.SmallestCategory = extremes(doc.Categories)
	return st
}

// extremes picks the largest and smallest categories. Empty categories only
// take part when every category is empty. Ties keep the earlier category.
func extremes(cats []pricelist.Category) (largest, smallest CategorySize) {
	placeholder := CategorySize{Name: NoCategoryName}
	if len(cats) == 0 {
		return placeholder, placeholder
	}
	pool := make([]pricelist.Category, 0, len(cats))
	for _, c := range cats {
		if len(c.Services) > 0 {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = cats
	}
	largest = CategorySize{Name: pool[0].Name, Count: len(pool[0].Services)}
	smallest = largest
	for _, c := range pool[1:] {
		n := len(c.Services)
		if n > largest.Count {
			largest = CategorySize{Name: c.Name, Count: n}
		}
		if n < smallest.Count {
			smallest = CategorySize{Name: c.Name, Count: n}
		}
	}
	return largest, smallest
}
