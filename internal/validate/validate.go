// Package validate decides whether an extracted price list carries enough
// signal to be worth a paid analysis.
package validate

import (
    "errors"
    "fmt"

    "github.com/hyperifyio/salonaudit/internal/pricelist"
)

// Code classifies why a document was rejected.
type Code string

const (
    NoCategories           Code = "NO_CATEGORIES"
    TooFewServices         Code = "TOO_FEW_SERVICES"
    TooManyEmptyCategories Code = "TOO_MANY_EMPTY_CATEGORIES"
)

// MinServices is the smallest service count that can be analyzed.
const MinServices = 3

// maxEmptyRatio is the largest share of empty categories still accepted.
const maxEmptyRatio = 0.5

// ValidationError is returned by ValidateScrapedData. The payload fields are
// filled only for the codes that use them.
type ValidationError struct {
    Code    Code
    Message string

    // TOO_FEW_SERVICES
    Found   int
    Minimum int

    // TOO_MANY_EMPTY_CATEGORIES
    Empty      int
    Categories int
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable is always false: running the same listing again cannot change
// the outcome.
func (e *ValidationError) Retryable() bool { return false }

// ValidateScrapedData returns nil when doc can be analyzed, otherwise a
// *ValidationError. Checks run in a fixed order and the first failure wins:
// category presence, service count, then the empty-category ratio.
func ValidateScrapedData(doc pricelist.Document) error {
    if len(doc.Categories) == 0 {
        return &ValidationError{Code: NoCategories, Message: "no service categories were found"}
    }

    total := 0
    empty := 0
    for _, c := range doc.Categories {
        total += len(c.Services)
        if len(c.Services) == 0 {
            empty++
        }
    }
    if total < MinServices {
        return &ValidationError{
            Code:    TooFewServices,
            Message: fmt.Sprintf("found %d services, need at least %d", total, MinServices),
            Found:   total,
            Minimum: MinServices,
        }
    }
    if float64(empty) > float64(len(doc.Categories))*maxEmptyRatio {
        return &ValidationError{
            Code:       TooManyEmptyCategories,
            Message:    fmt.Sprintf("%d of %d categories have no services", empty, len(doc.Categories)),
            Empty:      empty,
            Categories: len(doc.Categories),
        }
    }
    return nil
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
    var ve *ValidationError
    if errors.As(err, &ve) {
        return ve, true
    }
    return nil, false
}

// UserMessage returns the message shown to a salon owner for a rejection.
func UserMessage(code Code) string {
    switch code {
    case NoCategories:
        return "Nie udało się rozpoznać żadnych kategorii usług w podanym cenniku. Sprawdź, czy tekst zawiera nagłówki sekcji i ceny."
    case TooFewServices:
        return "Cennik zawiera za mało usług do analizy. Potrzebujemy co najmniej 3 usług z cenami."
    case TooManyEmptyCategories:
        return "Większość kategorii w cenniku nie zawiera usług. Uzupełnij kategorie lub usuń puste sekcje."
    default:
        return "Nie udało się przeanalizować cennika."
    }
}
