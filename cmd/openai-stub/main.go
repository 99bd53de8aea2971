// Command openai-stub serves canned micro-format answers on an
// OpenAI-compatible API so the audit pipeline can run without a model.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/salonaudit/internal/audit"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const coreAnswer = `SCORE: 64
FEEDBACK: Cennik jest czytelny i podzielony na kategorie. Brakuje opisów, które pokazują efekt zabiegu.
POTENTIAL: Średni | Dobra struktura, ale nazwy usług nie sprzedają efektu.
STRENGTHS:
- Czytelny podział na kategorie
- Ceny przy każdej usłudze
- Rozsądna liczba pozycji
WEAKNESSES:
- Brak opisów | Klientka nie wie, czym różnią się podobne zabiegi
- Ceny "od" | Niepewny koszt zniechęca do rezerwacji online
- Brak czasu trwania | Trudno zaplanować wizytę
`

const recommendationsAnswer = `RECOMMENDATIONS:
- Dodaj jedno zdanie o efekcie do każdego zabiegu
- Zamień ceny "od" na konkretne kwoty lub widełki
- Podaj czas trwania przy każdej usłudze
- Wyróżnij dwa najpopularniejsze zabiegi
- Stwórz pakiet łączący usługi z jednej kategorii
BEFORE: %s
AFTER: %s z efektem widocznym od pierwszej wizyty
WHY: Nazwa opisuje efekt, a nie tylko technikę.
`

const tipsAnswer = `TIPS:
- SEO | High | Lokalne frazy | Dodaj nazwę miasta do nazw kluczowych usług.
- Conversion | High | Pakiety | Połącz dwa zabiegi w jednej, niższej cenie.
- Retention | Medium | Karta stałej klientki | Co dziesiąta wizyta z rabatem.
- Image | Low | Zdjęcia efektów | Dodaj galerię przed i po.
`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) < 2 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content := answerFor(req.Messages[0].Content, req.Messages[1].Content)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	})
	return mux
}

// answerFor picks the canned answer for the stage named by the system prompt.
func answerFor(system, user string) string {
	switch {
	case strings.Contains(system, audit.MarkerTips+":"):
		return tipsAnswer
	case strings.Contains(system, audit.MarkerRecommendations+":"):
		name := firstServiceName(user)
		return fmt.Sprintf(recommendationsAnswer, name, name)
	default:
		return coreAnswer
	}
}

// firstServiceName returns the first "- name | ..." entry of the user prompt.
func firstServiceName(user string) string {
	for _, line := range strings.Split(user, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, audit.ListPrefix) {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimPrefix(line, audit.ListPrefix), audit.FieldSeparator)
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return "Usługa"
}
