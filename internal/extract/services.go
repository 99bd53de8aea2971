package extract

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"

    "github.com/hyperifyio/salonaudit/internal/pricelist"
)

// containerSelector matches elements whose class names suggest they hold a
// single offer on typical salon and booking pages.
const containerSelector = `[class*="service"], [class*="Service"], [class*="item"], [class*="offer"], [class*="treatment"], [class*="zabieg"]`

const (
    nameSelector        = `h1, h2, h3, h4, h5, h6, strong, b, [class*="name"], [class*="title"]`
    priceSelector       = `[class*="price"], [class*="cena"]`
    durationSelector    = `[class*="duration"], [class*="time"], [class*="czas"]`
    descriptionSelector = `[class*="desc"], [class*="opis"], p`
)

// ServicesFromHTML is the secondary extraction path used when the text parser
// found too little. It looks for repeating service containers and returns a
// single-category Document. Containers nested inside another usable container
// win, so list wrappers such as "services-list" do not swallow their items.
func ServicesFromHTML(markup string) pricelist.Document {
    doc := pricelist.Document{SourceText: markup}
    if strings.TrimSpace(markup) == "" {
        doc.Recount()
        return doc
    }
    root, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
    if err != nil {
        doc.Recount()
        return doc
    }
    doc.SalonName = collapseSpaces(strings.TrimSpace(root.Find("head title").First().Text()))

    candidates := root.Find(containerSelector)
    parsed := make(map[*html.Node]pricelist.Service, candidates.Length())
    candidates.Each(func(_ int, s *goquery.Selection) {
        if svc, ok := serviceFromContainer(s); ok {
            parsed[s.Get(0)] = svc
        }
    })

    var services []pricelist.Service
    candidates.Each(func(_ int, s *goquery.Selection) {
        svc, ok := parsed[s.Get(0)]
        if !ok {
            return
        }
        inner := s.Find(containerSelector).FilterFunction(func(_ int, d *goquery.Selection) bool {
            _, ok := parsed[d.Get(0)]
            return ok
        })
        if inner.Length() > 0 {
            return
        }
        services = append(services, svc)
    })

    if len(services) > 0 {
        doc.Categories = []pricelist.Category{{Name: pricelist.DefaultCategoryName, Services: services}}
    }
    doc.Recount()
    return doc
}

func serviceFromContainer(s *goquery.Selection) (pricelist.Service, bool) {
    text := collapseSpaces(strings.TrimSpace(s.Text()))

    price, start, _, ok := pricelist.FindPrice(collapseSpaces(s.Find(priceSelector).First().Text()))
    if !ok {
        price, start, _, ok = pricelist.FindPrice(text)
        if !ok {
            return pricelist.Service{}, false
        }
    } else {
        start = -1
    }

    name := ""
    s.Find(nameSelector).EachWithBreak(func(_ int, n *goquery.Selection) bool {
        candidate := pricelist.CleanServiceName(collapseSpaces(n.Text()))
        if candidate != "" && !pricelist.HasPrice(candidate) {
            name = candidate
            return false
        }
        return true
    })
    if name == "" && start > 0 {
        name = pricelist.CleanServiceName(text[:start])
    }
    if !pricelist.ValidServiceName(name) {
        return pricelist.Service{}, false
    }

    svc := pricelist.Service{Name: name, Price: price}
    svc.Duration = pricelist.FindDuration(collapseSpaces(s.Find(durationSelector).First().Text()))
    if svc.Duration == "" {
        svc.Duration = pricelist.FindDuration(text)
    }
    s.Find(descriptionSelector).EachWithBreak(func(_ int, d *goquery.Selection) bool {
        desc := collapseSpaces(strings.TrimSpace(d.Text()))
        if n := len([]rune(desc)); n >= 10 && n <= 500 && !pricelist.HasPrice(desc) && desc != name {
            svc.Description = desc
            return false
        }
        return true
    })
    return svc, true
}
