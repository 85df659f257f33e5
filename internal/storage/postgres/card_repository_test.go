package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slabhouse/marketplace/internal/domain"
	"github.com/slabhouse/marketplace/internal/testutil"
)

func TestCardRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCardRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateCard and GetCard round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		now := time.Now().UTC().Truncate(time.Microsecond)
		card := domain.Card{
			ID:         uuid.NewString(),
			SellerID:   "seller-1",
			Category:   "basketball",
			SetName:    "Prizm",
			PlayerName: "Luka Doncic",
			Parallel:   "Silver",
			Condition:  "near-mint",
			PriceCents: 250000,
			Status:     domain.CardStatusAvailable,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := repo.CreateCard(ctx, card); err != nil {
			t.Fatalf("create card: %v", err)
		}

		got, err := repo.GetCard(ctx, card.ID)
		if err != nil {
			t.Fatalf("get card: %v", err)
		}
		if got.PlayerName != card.PlayerName || got.PriceCents != card.PriceCents {
			t.Fatalf("unexpected card: %+v", got)
		}
		if got.IntakeBatchID != "" {
			t.Fatalf("expected empty batch id, got %s", got.IntakeBatchID)
		}

		_, err = repo.GetCard(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrCardNotFound) {
			t.Fatalf("expected ErrCardNotFound, got %v", err)
		}
		_, err = repo.GetCard(ctx, "not-a-uuid")
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("CreateCard rejects unknown intake batch", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		now := time.Now().UTC()
		err := repo.CreateCard(ctx, domain.Card{
			ID:            uuid.NewString(),
			SellerID:      "seller-1",
			IntakeBatchID: uuid.NewString(),
			Category:      "basketball",
			SetName:       "Prizm",
			PlayerName:    "Luka Doncic",
			Parallel:      "Base",
			Condition:     "near-mint",
			Status:        domain.CardStatusAvailable,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if !errors.Is(err, domain.ErrBatchNotFound) {
			t.Fatalf("expected ErrBatchNotFound, got %v", err)
		}
	})

	t.Run("TransitionCardStatus distinguishes missing from conflicting", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		cardID := testutil.InsertCard(t, ctx, pool, domain.Card{Status: domain.CardStatusAvailable})

		card, err := repo.TransitionCardStatus(ctx, cardID, domain.CardStatusAvailable, domain.CardStatusReserved)
		if err != nil {
			t.Fatalf("transition: %v", err)
		}
		if card.Status != domain.CardStatusReserved {
			t.Fatalf("expected reserved, got %s", card.Status)
		}

		_, err = repo.TransitionCardStatus(ctx, cardID, domain.CardStatusAvailable, domain.CardStatusReserved)
		if !errors.Is(err, domain.ErrCardConflict) {
			t.Fatalf("expected ErrCardConflict, got %v", err)
		}

		_, err = repo.TransitionCardStatus(ctx, uuid.NewString(), domain.CardStatusAvailable, domain.CardStatusReserved)
		if !errors.Is(err, domain.ErrCardNotFound) {
			t.Fatalf("expected ErrCardNotFound, got %v", err)
		}
	})

	t.Run("concurrent transitions have exactly one winner", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		cardID := testutil.InsertCard(t, ctx, pool, domain.Card{Status: domain.CardStatusAvailable})

		const racers = 8
		var wg sync.WaitGroup
		results := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.TransitionCardStatus(ctx, cardID, domain.CardStatusAvailable, domain.CardStatusReserved)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrCardConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 || conflicts != racers-1 {
			t.Fatalf("expected 1 winner and %d conflicts, got %d / %d", racers-1, wins, conflicts)
		}
	})

	t.Run("ListCards filters and pages", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		testutil.InsertCard(t, ctx, pool, domain.Card{PlayerName: "Luka Doncic", Category: "basketball", PriceCents: 5000})
		testutil.InsertCard(t, ctx, pool, domain.Card{PlayerName: "Luka Garza", Category: "basketball", PriceCents: 500})
		testutil.InsertCard(t, ctx, pool, domain.Card{PlayerName: "Justin Herbert", Category: "football", PriceCents: 2000})

		min := int64(1000)
		cards, total, err := repo.ListCards(ctx, domain.CardFilter{
			Category: "basketball",
			MinPrice: &min,
			Take:     50,
		})
		if err != nil {
			t.Fatalf("list cards: %v", err)
		}
		if total != 1 || len(cards) != 1 {
			t.Fatalf("expected single match, got total %d len %d", total, len(cards))
		}
		if cards[0].PlayerName != "Luka Doncic" {
			t.Fatalf("unexpected card %+v", cards[0])
		}

		cards, total, err = repo.ListCards(ctx, domain.CardFilter{PlayerName: "luka", Take: 1})
		if err != nil {
			t.Fatalf("list cards: %v", err)
		}
		if total != 2 || len(cards) != 1 {
			t.Fatalf("expected total 2 page 1, got total %d len %d", total, len(cards))
		}
	})

	t.Run("DeleteCard refuses referenced cards", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		cardID := testutil.InsertCard(t, ctx, pool, domain.Card{})
		testutil.InsertBox(t, ctx, pool, "buyer-1", cardID)

		err := repo.DeleteCard(ctx, cardID)
		if !errors.Is(err, domain.ErrCardReferenced) {
			t.Fatalf("expected ErrCardReferenced, got %v", err)
		}

		freeID := testutil.InsertCard(t, ctx, pool, domain.Card{})
		if err := repo.DeleteCard(ctx, freeID); err != nil {
			t.Fatalf("delete free card: %v", err)
		}
	})

	t.Run("SetCardImages keeps the untouched side", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		cardID := testutil.InsertCard(t, ctx, pool, domain.Card{})

		card, err := repo.SetCardImages(ctx, cardID, "http://localhost/uploads/front.jpg", "")
		if err != nil {
			t.Fatalf("set front image: %v", err)
		}
		if card.FrontImageURL == "" || card.BackImageURL != "" {
			t.Fatalf("unexpected images %+v", card)
		}

		card, err = repo.SetCardImages(ctx, cardID, "", "http://localhost/uploads/back.jpg")
		if err != nil {
			t.Fatalf("set back image: %v", err)
		}
		if card.FrontImageURL == "" || card.BackImageURL == "" {
			t.Fatalf("expected both sides set, got %+v", card)
		}
	})
}
