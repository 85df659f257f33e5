package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/slabhouse/marketplace/internal/domain"
)

// BoxService is the minimal interface needed for the buyer box endpoints.
type BoxService interface {
	Add(ctx context.Context, buyerID, cardID string) (domain.BoxEntry, error)
	Remove(ctx context.Context, buyerID, cardID string) error
	Get(ctx context.Context, buyerID string) (domain.BoxView, error)
	Clear(ctx context.Context, buyerID string) (int, error)
}

// HandleClaimCard returns an HTTP handler that claims a card into a buyer box.
func HandleClaimCard(svc BoxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req claimCardRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.CardID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "card_id is required")
			return
		}

		entry, err := svc.Add(r.Context(), mux.Vars(r)["buyerId"], req.CardID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toBoxEntryResponse(entry))
	}
}

// HandleReleaseCard returns an HTTP handler that releases a claimed card back
// to the open marketplace.
func HandleReleaseCard(svc BoxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if err := svc.Remove(r.Context(), vars["buyerId"], vars["cardId"]); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetBox returns an HTTP handler for viewing a buyer box.
func HandleGetBox(svc BoxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), mux.Vars(r)["buyerId"])
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := boxViewResponse{
			BuyerID:         view.BuyerID,
			Entries:         make([]boxEntryResponse, 0, len(view.Entries)),
			TotalPriceCents: view.TotalPriceCents,
		}
		for _, entry := range view.Entries {
			resp.Entries = append(resp.Entries, toBoxEntryResponse(entry))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleClearBox returns an HTTP handler that releases every card in a box.
func HandleClearBox(svc BoxService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		released, err := svc.Clear(r.Context(), mux.Vars(r)["buyerId"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(clearBoxResponse{Released: released})
	}
}

type claimCardRequest struct {
	CardID string `json:"card_id"`
}

type boxEntryResponse struct {
	CardID  string       `json:"card_id"`
	AddedAt time.Time    `json:"added_at"`
	Card    cardResponse `json:"card"`
}

type boxViewResponse struct {
	BuyerID         string             `json:"buyer_id"`
	Entries         []boxEntryResponse `json:"entries"`
	TotalPriceCents int64              `json:"total_price_cents"`
}

type clearBoxResponse struct {
	Released int `json:"released"`
}

func toBoxEntryResponse(entry domain.BoxEntry) boxEntryResponse {
	return boxEntryResponse{
		CardID:  entry.Item.CardID,
		AddedAt: entry.Item.AddedAt,
		Card:    toCardResponse(entry.Card),
	}
}
