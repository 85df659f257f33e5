package app

import (
	"context"
	"errors"

	"github.com/slabhouse/marketplace/internal/clock"
	"github.com/slabhouse/marketplace/internal/domain"
	"github.com/slabhouse/marketplace/internal/telemetry"
)

type BoxRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetCard(ctx context.Context, cardID string) (domain.Card, error)
	TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error)
	GetBoxByBuyer(ctx context.Context, buyerID string) (*domain.BuyerBox, error)
	GetBoxByBuyerForUpdate(ctx context.Context, buyerID string) (*domain.BuyerBox, error)
	CreateBox(ctx context.Context, box domain.BuyerBox) error
	GetBoxItem(ctx context.Context, boxID, cardID string) (*domain.BoxItem, error)
	AddBoxItem(ctx context.Context, item domain.BoxItem) error
	DeleteBoxItem(ctx context.Context, itemID string) error
	ListBoxEntries(ctx context.Context, boxID string) ([]domain.BoxEntry, error)
	DeleteBoxItems(ctx context.Context, boxID string) error
}

// BoxService manages buyer boxes: claiming available cards into a box,
// releasing them back, and viewing or clearing the box.
type BoxService struct {
	repo  BoxRepository
	clock clock.Clock
}

func NewBoxService(repo BoxRepository, clk clock.Clock) *BoxService {
	return &BoxService{
		repo:  repo,
		clock: clk,
	}
}

// Add claims an available card into the buyer's box. The membership insert and
// the available->reserved transition land in one transaction; if either fails,
// neither is kept.
func (s *BoxService) Add(ctx context.Context, buyerID, cardID string) (domain.BoxEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "box.claim")
	defer span.End()

	now := s.clock.Now()
	var result domain.BoxEntry

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		card, err := s.repo.GetCard(txCtx, cardID)
		if err != nil {
			return err
		}
		if card.Status != domain.CardStatusAvailable {
			return &domain.CardUnavailableError{CardID: cardID, Status: card.Status}
		}

		box, err := s.repo.GetBoxByBuyer(txCtx, buyerID)
		if err != nil {
			return err
		}
		if box == nil {
			created := domain.BuyerBox{ID: newID(), BuyerID: buyerID, CreatedAt: now}
			switch err := s.repo.CreateBox(txCtx, created); {
			case err == nil:
				box = &created
			case errors.Is(err, domain.ErrBoxExists):
				// A concurrent first claim won the box creation; use theirs.
				box, err = s.repo.GetBoxByBuyer(txCtx, buyerID)
				if err != nil {
					return err
				}
				if box == nil {
					return domain.ErrCardConflict
				}
			default:
				return err
			}
		}

		if existing, err := s.repo.GetBoxItem(txCtx, box.ID, cardID); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrAlreadyInBox
		}

		item := domain.BoxItem{ID: newID(), BoxID: box.ID, CardID: cardID, AddedAt: now}
		if err := s.repo.AddBoxItem(txCtx, item); err != nil {
			// A conflicting insert means another request holds the card. When
			// it is this buyer's own box, surface the idempotency error.
			if errors.Is(err, domain.ErrCardConflict) {
				if existing, lookupErr := s.repo.GetBoxItem(txCtx, box.ID, cardID); lookupErr == nil && existing != nil {
					return domain.ErrAlreadyInBox
				}
			}
			return err
		}

		reserved, err := transitionCard(txCtx, s.repo, cardID, domain.CardStatusAvailable, domain.CardStatusReserved)
		if err != nil {
			return err
		}

		result = domain.BoxEntry{Item: item, Card: reserved}
		return nil
	})
	if err != nil {
		return domain.BoxEntry{}, err
	}
	return result, nil
}

// Remove releases a claimed card: the membership delete and the
// reserved->available transition are applied atomically together.
func (s *BoxService) Remove(ctx context.Context, buyerID, cardID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		box, err := s.repo.GetBoxByBuyer(txCtx, buyerID)
		if err != nil {
			return err
		}
		if box == nil {
			return domain.ErrBoxItemNotFound
		}

		item, err := s.repo.GetBoxItem(txCtx, box.ID, cardID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrBoxItemNotFound
		}

		if err := s.repo.DeleteBoxItem(txCtx, item.ID); err != nil {
			return err
		}
		_, err = transitionCard(txCtx, s.repo, cardID, domain.CardStatusReserved, domain.CardStatusAvailable)
		return err
	})
}

// Get returns the buyer's box. A buyer who has never claimed anything gets an
// empty view, not an error.
func (s *BoxService) Get(ctx context.Context, buyerID string) (domain.BoxView, error) {
	view := domain.BoxView{BuyerID: buyerID}

	box, err := s.repo.GetBoxByBuyer(ctx, buyerID)
	if err != nil {
		return domain.BoxView{}, err
	}
	if box == nil {
		return view, nil
	}

	entries, err := s.repo.ListBoxEntries(ctx, box.ID)
	if err != nil {
		return domain.BoxView{}, err
	}
	view.Entries = entries
	for _, e := range entries {
		view.TotalPriceCents += e.Card.PriceCents
	}
	return view, nil
}

// Clear releases every card in the box as one atomic bulk operation and
// reports how many were released. Clearing an empty or missing box succeeds
// with zero.
func (s *BoxService) Clear(ctx context.Context, buyerID string) (int, error) {
	released := 0
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		released = 0

		// Lock the box row so a concurrent checkout and a clear serialize.
		box, err := s.repo.GetBoxByBuyerForUpdate(txCtx, buyerID)
		if err != nil {
			return err
		}
		if box == nil {
			return nil
		}

		entries, err := s.repo.ListBoxEntries(txCtx, box.ID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		if err := s.repo.DeleteBoxItems(txCtx, box.ID); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := transitionCard(txCtx, s.repo, e.Card.ID, domain.CardStatusReserved, domain.CardStatusAvailable); err != nil {
				return err
			}
		}
		released = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}
