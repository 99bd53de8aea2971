package app

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"github.com/hyperifyio/salonaudit/internal/validate"
)

// ErrInvalidListing wraps validation failures returned by Run so callers can
// tell a rejected listing apart from infrastructure errors.
var ErrInvalidListing = errors.New("invalid listing")

const (
	overloadMessage = "Usługa analizy jest chwilowo przeciążona. Spróbuj ponownie za kilka minut."
	genericMessage  = "Nie udało się przygotować raportu. Spróbuj ponownie później."
)

// FailureMessage maps a run error to the message shown to the salon owner.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	if ve, ok := validate.AsValidationError(err); ok {
		return validate.UserMessage(ve.Code)
	}
	if isOverloaded(err) {
		return overloadMessage
	}
	return genericMessage
}

// isOverloaded reports whether err looks like upstream throttling or an
// unavailable model backend.
func isOverloaded(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && overloadStatus(apiErr.HTTPStatusCode) {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && overloadStatus(reqErr.HTTPStatusCode) {
		return true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && overloadStatus(gErr.Code) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"overloaded", "resource_exhausted", "resourceexhausted", "code = unavailable", "rate limit", "status code: 429", "status code: 503"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

func overloadStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}
