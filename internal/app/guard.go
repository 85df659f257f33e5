package app

import (
	"context"

	"github.com/slabhouse/marketplace/internal/domain"
)

// CardTransitioner applies a compare-and-swap status change to a single card:
// the write succeeds only if the card's status still equals from at the moment
// of the update, and fails with domain.ErrCardConflict otherwise.
type CardTransitioner interface {
	TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error)
}

// transitionCard is the sole path for mutating card lifecycle state. Illegal
// edges are rejected before touching storage; the repository enforces the CAS.
// No retries: callers decide what a lost race means for them.
func transitionCard(ctx context.Context, repo CardTransitioner, cardID string, from, to domain.CardStatus) (domain.Card, error) {
	if !from.CanTransitionTo(to) {
		return domain.Card{}, &domain.InvalidTransitionError{From: string(from), To: string(to)}
	}
	return repo.TransitionCardStatus(ctx, cardID, from, to)
}
