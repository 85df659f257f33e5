package http

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/slabhouse/marketplace/internal/app"
	"github.com/slabhouse/marketplace/internal/domain"
	"github.com/slabhouse/marketplace/internal/storage/blob"
)

// CardService is the minimal interface needed for the card catalog endpoints.
type CardService interface {
	Create(ctx context.Context, in app.CreateCardInput) (domain.Card, error)
	Get(ctx context.Context, cardID string) (domain.Card, error)
	Update(ctx context.Context, cardID string, in app.UpdateCardInput) (domain.Card, error)
	Delete(ctx context.Context, cardID string) error
	List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, int, error)
	UpdateImages(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error)
}

// HandleCreateCard returns an HTTP handler for listing a card for sale.
func HandleCreateCard(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCardRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		card, err := svc.Create(r.Context(), app.CreateCardInput{
			SellerID:      req.SellerID,
			IntakeBatchID: req.IntakeBatchID,
			Category:      req.Category,
			SetName:       req.SetName,
			PlayerName:    req.PlayerName,
			TeamName:      req.TeamName,
			CardNumber:    req.CardNumber,
			Parallel:      req.Parallel,
			SerialNumber:  req.SerialNumber,
			SerialTotal:   req.SerialTotal,
			Condition:     req.Condition,
			PriceCents:    req.PriceCents,
			SlotLocation:  req.SlotLocation,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toCardResponse(card))
	}
}

// HandleGetCard returns an HTTP handler for fetching a single card.
func HandleGetCard(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toCardResponse(card))
	}
}

// HandleUpdateCard returns an HTTP handler for editing card attributes.
func HandleUpdateCard(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateCardRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		card, err := svc.Update(r.Context(), mux.Vars(r)["id"], app.UpdateCardInput{
			Category:     req.Category,
			SetName:      req.SetName,
			PlayerName:   req.PlayerName,
			TeamName:     req.TeamName,
			CardNumber:   req.CardNumber,
			Parallel:     req.Parallel,
			SerialNumber: req.SerialNumber,
			SerialTotal:  req.SerialTotal,
			Condition:    req.Condition,
			PriceCents:   req.PriceCents,
			SlotLocation: req.SlotLocation,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toCardResponse(card))
	}
}

// HandleDeleteCard returns an HTTP handler for delisting a card.
func HandleDeleteCard(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleListCards returns an HTTP handler for browsing the catalog.
func HandleListCards(svc CardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseCardFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		cards, total, err := svc.List(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := listCardsResponse{
			Cards: make([]cardResponse, 0, len(cards)),
			Total: total,
		}
		for _, card := range cards {
			resp.Cards = append(resp.Cards, toCardResponse(card))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

const maxImageBytes = 10 << 20

// HandleUploadCardImages returns an HTTP handler that stores front/back image
// files and records their URLs on the card. Either part may be omitted.
func HandleUploadCardImages(svc CardService, store blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID := mux.Vars(r)["id"]

		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid multipart body")
			return
		}

		var frontURL, backURL string
		for _, side := range []struct {
			field string
			dest  *string
		}{
			{field: "front", dest: &frontURL},
			{field: "back", dest: &backURL},
		} {
			file, header, err := r.FormFile(side.field)
			if err != nil {
				if err == http.ErrMissingFile {
					continue
				}
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid multipart body")
				return
			}
			key := imageKey(cardID, side.field, header.Filename)
			url, err := store.Save(r.Context(), key, file)
			_ = file.Close()
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			*side.dest = url
		}

		if frontURL == "" && backURL == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "front or back image file required")
			return
		}

		card, err := svc.UpdateImages(r.Context(), cardID, frontURL, backURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toCardResponse(card))
	}
}

func imageKey(cardID, side, filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	return "cards/" + cardID + "/" + side + ext
}

func parseCardFilter(r *http.Request) (domain.CardFilter, error) {
	q := r.URL.Query()
	filter := domain.CardFilter{
		Category:   q.Get("category"),
		PlayerName: q.Get("player"),
		SetName:    q.Get("set"),
		Parallel:   q.Get("parallel"),
		Condition:  q.Get("condition"),
		Status:     domain.CardStatus(q.Get("status")),
	}

	for _, p := range []struct {
		param string
		dest  **int64
	}{
		{param: "min_price", dest: &filter.MinPrice},
		{param: "max_price", dest: &filter.MaxPrice},
	} {
		raw := q.Get(p.param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.CardFilter{}, domain.ErrInvalidPrice
		}
		*p.dest = &v
	}

	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.CardFilter{}, domain.ErrInvalidID
		}
		filter.Skip = v
	}
	if raw := q.Get("take"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return domain.CardFilter{}, domain.ErrInvalidID
		}
		filter.Take = v
	}
	return filter, nil
}

type createCardRequest struct {
	SellerID      string `json:"seller_id"`
	IntakeBatchID string `json:"intake_batch_id,omitempty"`
	Category      string `json:"category"`
	SetName       string `json:"set_name"`
	PlayerName    string `json:"player_name"`
	TeamName      string `json:"team_name,omitempty"`
	CardNumber    string `json:"card_number,omitempty"`
	Parallel      string `json:"parallel,omitempty"`
	SerialNumber  int    `json:"serial_number,omitempty"`
	SerialTotal   int    `json:"serial_total,omitempty"`
	Condition     string `json:"condition,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	SlotLocation  string `json:"slot_location,omitempty"`
}

type updateCardRequest struct {
	Category     *string `json:"category"`
	SetName      *string `json:"set_name"`
	PlayerName   *string `json:"player_name"`
	TeamName     *string `json:"team_name"`
	CardNumber   *string `json:"card_number"`
	Parallel     *string `json:"parallel"`
	SerialNumber *int    `json:"serial_number"`
	SerialTotal  *int    `json:"serial_total"`
	Condition    *string `json:"condition"`
	PriceCents   *int64  `json:"price_cents"`
	SlotLocation *string `json:"slot_location"`
}

type cardResponse struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	IntakeBatchID string    `json:"intake_batch_id,omitempty"`
	Category      string    `json:"category"`
	SetName       string    `json:"set_name"`
	PlayerName    string    `json:"player_name"`
	TeamName      string    `json:"team_name,omitempty"`
	CardNumber    string    `json:"card_number,omitempty"`
	Parallel      string    `json:"parallel"`
	SerialNumber  int       `json:"serial_number,omitempty"`
	SerialTotal   int       `json:"serial_total,omitempty"`
	Condition     string    `json:"condition"`
	PriceCents    int64     `json:"price_cents"`
	FrontImageURL string    `json:"front_image_url,omitempty"`
	BackImageURL  string    `json:"back_image_url,omitempty"`
	SlotLocation  string    `json:"slot_location,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type listCardsResponse struct {
	Cards []cardResponse `json:"cards"`
	Total int            `json:"total"`
}

func toCardResponse(card domain.Card) cardResponse {
	return cardResponse{
		ID:            card.ID,
		SellerID:      card.SellerID,
		IntakeBatchID: card.IntakeBatchID,
		Category:      card.Category,
		SetName:       card.SetName,
		PlayerName:    card.PlayerName,
		TeamName:      card.TeamName,
		CardNumber:    card.CardNumber,
		Parallel:      card.Parallel,
		SerialNumber:  card.SerialNumber,
		SerialTotal:   card.SerialTotal,
		Condition:     card.Condition,
		PriceCents:    card.PriceCents,
		FrontImageURL: card.FrontImageURL,
		BackImageURL:  card.BackImageURL,
		SlotLocation:  card.SlotLocation,
		Status:        string(card.Status),
		CreatedAt:     card.CreatedAt,
		UpdatedAt:     card.UpdatedAt,
	}
}
