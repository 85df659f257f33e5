package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/slabhouse/marketplace/internal/app"
	"github.com/slabhouse/marketplace/internal/domain"
)

func TestHandleCreateCard(t *testing.T) {
	t.Parallel()

	t.Run("lists card and returns it", func(t *testing.T) {
		svc := &stubCardService{
			createFn: func(_ context.Context, in app.CreateCardInput) (domain.Card, error) {
				if in.SellerID != "seller-1" || in.PriceCents != 2500 {
					t.Fatalf("unexpected input %+v", in)
				}
				return domain.Card{
					ID:         "card-1",
					SellerID:   in.SellerID,
					Category:   in.Category,
					SetName:    in.SetName,
					PlayerName: in.PlayerName,
					Parallel:   "Base",
					Condition:  "near-mint",
					PriceCents: in.PriceCents,
					Status:     domain.CardStatusAvailable,
				}, nil
			},
		}

		body := `{"seller_id":"seller-1","category":"basketball","set_name":"Prizm","player_name":"Test Player","price_cents":2500}`
		rec := serve(t, stubRouter(routerStubs{cards: svc}), http.MethodPost, "/cards", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		var resp cardResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ID != "card-1" || resp.Status != "available" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("missing details map to bad request", func(t *testing.T) {
		svc := &stubCardService{
			createFn: func(context.Context, app.CreateCardInput) (domain.Card, error) {
				return domain.Card{}, domain.ErrCardDetailsMissing
			},
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}),
			http.MethodPost, "/cards", `{"seller_id":"seller-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := serve(t, stubRouter(routerStubs{cards: &stubCardService{}}),
			http.MethodPost, "/cards", `{"bogus":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleUpdateCard(t *testing.T) {
	t.Parallel()

	t.Run("passes only provided fields", func(t *testing.T) {
		svc := &stubCardService{
			updateFn: func(_ context.Context, cardID string, in app.UpdateCardInput) (domain.Card, error) {
				if cardID != "card-1" {
					t.Fatalf("unexpected card %s", cardID)
				}
				if in.PriceCents == nil || *in.PriceCents != 3000 {
					t.Fatalf("expected price 3000, got %+v", in.PriceCents)
				}
				if in.PlayerName != nil {
					t.Fatalf("expected player name untouched")
				}
				return domain.Card{ID: cardID, PriceCents: 3000}, nil
			},
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}),
			http.MethodPatch, "/cards/card-1", `{"price_cents":3000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("unknown card maps to not found", func(t *testing.T) {
		svc := &stubCardService{
			updateFn: func(context.Context, string, app.UpdateCardInput) (domain.Card, error) {
				return domain.Card{}, domain.ErrCardNotFound
			},
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}),
			http.MethodPatch, "/cards/missing", `{"price_cents":3000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleDeleteCard(t *testing.T) {
	t.Parallel()

	t.Run("delists card", func(t *testing.T) {
		svc := &stubCardService{
			deleteFn: func(context.Context, string) error { return nil },
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}), http.MethodDelete, "/cards/card-1", "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}
	})

	t.Run("referenced card maps to conflict", func(t *testing.T) {
		svc := &stubCardService{
			deleteFn: func(context.Context, string) error { return domain.ErrCardReferenced },
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}), http.MethodDelete, "/cards/card-1", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
		if code := decodeErrorCode(t, rec); code != codeCardReferenced {
			t.Fatalf("expected code %s, got %s", codeCardReferenced, code)
		}
	})
}

func TestHandleListCards(t *testing.T) {
	t.Parallel()

	t.Run("parses filters from the query string", func(t *testing.T) {
		svc := &stubCardService{
			listFn: func(_ context.Context, filter domain.CardFilter) ([]domain.Card, int, error) {
				if filter.Category != "basketball" || filter.PlayerName != "Luka" {
					t.Fatalf("unexpected filter %+v", filter)
				}
				if filter.MinPrice == nil || *filter.MinPrice != 100 {
					t.Fatalf("expected min price 100, got %+v", filter.MinPrice)
				}
				if filter.Skip != 10 || filter.Take != 20 {
					t.Fatalf("expected paging 10/20, got %d/%d", filter.Skip, filter.Take)
				}
				return []domain.Card{{ID: "card-1"}}, 1, nil
			},
		}

		rec := serve(t, stubRouter(routerStubs{cards: svc}),
			http.MethodGet, "/cards?category=basketball&player=Luka&min_price=100&skip=10&take=20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp listCardsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Total != 1 || len(resp.Cards) != 1 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("rejects malformed price", func(t *testing.T) {
		rec := serve(t, stubRouter(routerStubs{cards: &stubCardService{}}),
			http.MethodGet, "/cards?min_price=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

type stubCardService struct {
	createFn func(ctx context.Context, in app.CreateCardInput) (domain.Card, error)
	getFn    func(ctx context.Context, cardID string) (domain.Card, error)
	updateFn func(ctx context.Context, cardID string, in app.UpdateCardInput) (domain.Card, error)
	deleteFn func(ctx context.Context, cardID string) error
	listFn   func(ctx context.Context, filter domain.CardFilter) ([]domain.Card, int, error)
	imagesFn func(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error)
}

func (s *stubCardService) Create(ctx context.Context, in app.CreateCardInput) (domain.Card, error) {
	return s.createFn(ctx, in)
}

func (s *stubCardService) Get(ctx context.Context, cardID string) (domain.Card, error) {
	return s.getFn(ctx, cardID)
}

func (s *stubCardService) Update(ctx context.Context, cardID string, in app.UpdateCardInput) (domain.Card, error) {
	return s.updateFn(ctx, cardID, in)
}

func (s *stubCardService) Delete(ctx context.Context, cardID string) error {
	return s.deleteFn(ctx, cardID)
}

func (s *stubCardService) List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, int, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCardService) UpdateImages(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error) {
	return s.imagesFn(ctx, cardID, frontURL, backURL)
}
