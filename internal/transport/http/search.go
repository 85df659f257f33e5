package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/slabhouse/marketplace/internal/app"
	"github.com/slabhouse/marketplace/internal/domain"
)

// SearchService is the minimal interface needed for the search endpoints.
type SearchService interface {
	Suggest(ctx context.Context, query, kind string) (app.Suggestions, error)
	Popular(ctx context.Context) (domain.PopularNames, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
}

// HandleSuggest returns an HTTP handler for autocomplete suggestions.
func HandleSuggest(svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := q.Get("q")
		if query == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "q is required")
			return
		}
		kind := q.Get("kind")
		switch kind {
		case "", "all", "player", "set":
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "kind must be player, set or all")
			return
		}

		suggestions, err := svc.Suggest(r.Context(), query, kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := suggestResponse{
			Players: suggestions.Players,
			Sets:    suggestions.Sets,
		}
		if resp.Players == nil {
			resp.Players = []string{}
		}
		if resp.Sets == nil {
			resp.Sets = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandlePopular returns an HTTP handler for the most common player and set
// names on the marketplace.
func HandlePopular(svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		popular, err := svc.Popular(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := popularResponse{
			Players: toNameCountResponses(popular.Players),
			Sets:    toNameCountResponses(popular.Sets),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleFilterOptions returns an HTTP handler for the filter facet values.
func HandleFilterOptions(svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := svc.FilterOptions(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := filterOptionsResponse{
			Categories:    options.Categories,
			Parallels:     options.Parallels,
			Conditions:    options.Conditions,
			MinPriceCents: options.MinPriceCents,
			MaxPriceCents: options.MaxPriceCents,
		}
		if resp.Categories == nil {
			resp.Categories = []string{}
		}
		if resp.Parallels == nil {
			resp.Parallels = []string{}
		}
		if resp.Conditions == nil {
			resp.Conditions = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type suggestResponse struct {
	Players []string `json:"players"`
	Sets    []string `json:"sets"`
}

type popularResponse struct {
	Players []nameCountResponse `json:"players"`
	Sets    []nameCountResponse `json:"sets"`
}

type nameCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func toNameCountResponses(counts []domain.NameCount) []nameCountResponse {
	out := make([]nameCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, nameCountResponse{Name: c.Name, Count: c.Count})
	}
	return out
}

type filterOptionsResponse struct {
	Categories    []string `json:"categories"`
	Parallels     []string `json:"parallels"`
	Conditions    []string `json:"conditions"`
	MinPriceCents int64    `json:"min_price_cents"`
	MaxPriceCents int64    `json:"max_price_cents"`
}
