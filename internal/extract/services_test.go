package extract

import (
    "testing"

    "github.com/hyperifyio/salonaudit/internal/pricelist"
)

const serviceCards = `<html><head><title>Studio Bella</title></head><body>
<div class="services-list">
  <div class="service-item">
    <h3 class="service-name">Manicure hybrydowy</h3>
    <span class="service-price">120 zł</span>
    <span class="service-duration">60 min</span>
    <p class="service-desc">Trwały manicure z odżywką i masażem dłoni.</p>
  </div>
  <div class="service-item">
    <h3 class="service-name">Pedicure SPA</h3>
    <span class="service-price">od 150 zł</span>
  </div>
  <div class="offer">
    <strong>Henna brwi</strong> 30 zł
  </div>
  <div class="item">Bez ceny</div>
</div>
</body></html>`

func TestServicesFromHTML_InnermostContainers(t *testing.T) {
    doc := ServicesFromHTML(serviceCards)
    if doc.SalonName != "Studio Bella" {
        t.Fatalf("salon name: got %q", doc.SalonName)
    }
    if len(doc.Categories) != 1 {
        t.Fatalf("expected a single category, got %d", len(doc.Categories))
    }
    if doc.TotalServices != 3 {
        t.Fatalf("expected 3 services, got %d: %+v", doc.TotalServices, doc.Categories[0].Services)
    }
    first := doc.Categories[0].Services[0]
    if first.Name != "Manicure hybrydowy" || first.Price != "120 zł" || first.Duration != "60 min" {
        t.Fatalf("unexpected first service: %+v", first)
    }
    if first.Description != "Trwały manicure z odżywką i masażem dłoni." {
        t.Fatalf("description: got %q", first.Description)
    }
    if got := doc.Categories[0].Services[1].Price; got != "od 150 zł" {
        t.Fatalf("price: got %q", got)
    }
    if got := doc.Categories[0].Services[2].Name; got != "Henna brwi" {
        t.Fatalf("name from emphasis: got %q", got)
    }
}

func TestServicesFromHTML_EmptyMarkup(t *testing.T) {
    doc := ServicesFromHTML("")
    if len(doc.Categories) != 0 || doc.TotalServices != 0 {
        t.Fatalf("expected empty document, got %+v", doc)
    }
}

func TestWithFallback_ReplacesThinPrimary(t *testing.T) {
    primary := pricelist.ParseText("## Manicure\nManicure klasyczny 80 zł")
    got, used := WithFallback(primary, serviceCards, nil)
    if !used {
        t.Fatalf("expected fallback to be used")
    }
    if got.TotalServices != 3 {
        t.Fatalf("expected fallback result to replace primary, got %d services", got.TotalServices)
    }
    for _, c := range got.Categories {
        if c.Name == "Manicure" {
            t.Fatalf("fallback must not merge primary categories")
        }
    }
}

func TestWithFallback_KeepsSufficientPrimary(t *testing.T) {
    primary := pricelist.ParseText("## Manicure\nManicure klasyczny 80 zł\nManicure hybrydowy 120 zł\nPedicure 100 zł")
    got, used := WithFallback(primary, serviceCards, nil)
    if used {
        t.Fatalf("fallback should not run when primary has enough services")
    }
    if got.TotalServices != 3 || got.Categories[0].Name != "Manicure" {
        t.Fatalf("primary should be returned unchanged: %+v", got)
    }
}

func TestWithFallback_NoMarkup(t *testing.T) {
    primary := pricelist.ParseText("")
    if _, used := WithFallback(primary, "", nil); used {
        t.Fatalf("fallback requires markup")
    }
}
