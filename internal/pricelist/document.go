// Package pricelist holds the structured form of a salon price list and the
// line-oriented parser that produces it from loosely formatted text.
package pricelist

// DefaultCategoryName names the category that collects services appearing
// before any heading, and the single category produced from markup.
const DefaultCategoryName = "Usługi"

// Service is a single priced offer. It has no identity beyond its position
// inside the owning category.
type Service struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Category groups services under one heading of the source listing.
type Category struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// Document is the canonical result of extracting services from a listing.
// TotalServices always equals the sum of len(Category.Services).
type Document struct {
	SalonName     string     `json:"salonName,omitempty"`
	SalonAddress  string     `json:"salonAddress,omitempty"`
	LogoURL       string     `json:"logoUrl,omitempty"`
	Categories    []Category `json:"categories"`
	TotalServices int        `json:"totalServiceCount"`
	SourceText    string     `json:"sourceText,omitempty"`
}

// Recount restores the TotalServices invariant and makes sure nil slices
// serialize as empty arrays.
func (d *Document) Recount() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	total := 0
	for i := range d.Categories {
		if d.Categories[i].Services == nil {
			d.Categories[i].Services = []Service{}
		}
		total += len(d.Categories[i].Services)
	}
	d.TotalServices = total
}

// ServiceNames returns every service name in document order.
func (d Document) ServiceNames() []string {
	out := make([]string, 0, d.TotalServices)
	for _, c := range d.Categories {
		for _, s := range c.Services {
			out = append(out, s.Name)
		}
	}
	return out
}
