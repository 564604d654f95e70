package service

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StubOptions configures the local stand-in for the recommendation service.
type StubOptions struct {
	// Audio, when set, is attached to every answer as raw base64.
	Audio  []byte
	Logger *slog.Logger
}

type stubRecommendation struct {
	keywords []string
	text     string
}

var stubRecommendations = []stubRecommendation{
	{
		keywords: []string{"djerba"},
		text: "For Djerba, consider Iberostar Selection Eolia Djerba for its spa and quiet beach.\n" +
			"Fiesta Beach Djerba suits families on a budget.\n\n" +
			"Iberostar Waves Mehari Djerba is a good all-inclusive alternative.",
	},
	{
		keywords: []string{"mahdia"},
		text: "Hasdrubal Thalassa & Spa Mahdia offers a private beach and a renowned thalasso centre.\n\n" +
			"Medina Solaria & Thalasso is a calmer option for couples.",
	},
	{
		keywords: []string{"hammamet", "kids", "pool"},
		text: "Try Iberostar Selection Diar El Andalous for pools and a kids club.\n\n" +
			"Book early in summer.",
	},
	{
		keywords: []string{"sousse", "family"},
		text: "Iberostar Averroes has direct beach access and family rooms.\n\n" +
			"Ask for a sea-view room on a higher floor.",
	},
	{
		keywords: []string{"tunis", "city", "luxury"},
		text:     "The Residence Tunis is a five-star resort with a large spa near Gammarth beach.",
	},
}

const stubFallback = "I could not match a region in your question.\n\n" +
	"Try asking about Sousse, Djerba, Hammamet, Mahdia or Tunis."

// NewStubHandler serves POST /ask with canned, keyword-matched answers and
// GET /healthz.
func NewStubHandler(opts StubOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	audio := ""
	if len(opts.Audio) > 0 {
		audio = base64.StdEncoding.EncodeToString(opts.Audio)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ask", func(w http.ResponseWriter, req *http.Request) {
		var body Request
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if strings.TrimSpace(body.Query) == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "query must not be empty"})
			return
		}

		text := StubAnswer(body.Query)
		if opts.Logger != nil {
			opts.Logger.Info("stub answered", "query_length", len(body.Query), "remote", req.RemoteAddr)
		}
		writeJSON(w, http.StatusOK, Answer{Text: text, AudioBase64: audio})
	})

	return r
}

// StubAnswer picks the first canned recommendation whose keyword appears in
// query.
func StubAnswer(query string) string {
	lower := strings.ToLower(query)
	for _, rec := range stubRecommendations {
		for _, kw := range rec.keywords {
			if strings.Contains(lower, kw) {
				return rec.text
			}
		}
	}
	return stubFallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
