package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCardNotFound       = errors.New("card not found")
	ErrBoxItemNotFound    = errors.New("card not in buyer box")
	ErrOrderNotFound      = errors.New("order not found")
	ErrBatchNotFound      = errors.New("intake batch not found")
	ErrCardConflict       = errors.New("card claimed by a concurrent request")
	ErrAlreadyInBox       = errors.New("card already in buyer box")
	ErrBoxExists          = errors.New("buyer box already exists")
	ErrBoxEmpty           = errors.New("buyer box is empty")
	ErrCardReferenced     = errors.New("card is referenced by a box or order")
	ErrCardDetailsMissing = errors.New("seller_id, category, set_name and player_name are required")
	ErrSellerRequired     = errors.New("seller_id is required")
	ErrInvalidPrice       = errors.New("price_cents must be non-negative")
	ErrInvalidID          = errors.New("invalid id")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// CardUnavailableError reports an operation against a card whose current
// lifecycle status forbids it, carrying the status for caller diagnostics.
type CardUnavailableError struct {
	CardID string
	Status CardStatus
}

func (e *CardUnavailableError) Error() string {
	return fmt.Sprintf("card %s is not available (status: %s)", e.CardID, e.Status)
}

// StaleReservationError aborts a checkout whose box references cards that are
// no longer reserved. It names every stale card; the checkout never proceeds
// with a subset.
type StaleReservationError struct {
	CardIDs []string
}

func (e *StaleReservationError) Error() string {
	ids := append([]string(nil), e.CardIDs...)
	sort.Strings(ids)
	return "cards no longer reserved: " + strings.Join(ids, ", ")
}

// InvalidTransitionError reports a skipped or reversed status transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
