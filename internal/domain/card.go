package domain

import "time"

type CardStatus string

const (
	CardStatusAvailable CardStatus = "available"
	CardStatusReserved  CardStatus = "reserved"
	CardStatusSold      CardStatus = "sold"
)

// CanTransitionTo reports whether moving to next is a legal lifecycle edge.
// Lifecycle: available -> reserved -> (available | sold); sold is terminal.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	switch s {
	case CardStatusAvailable:
		return next == CardStatusReserved
	case CardStatusReserved:
		return next == CardStatusAvailable || next == CardStatusSold
	default:
		return false
	}
}

// Card is a single uniquely identified sellable trading card.
type Card struct {
	ID       string
	SellerID string
	// IntakeBatchID is empty when the card was listed outside an intake batch.
	IntakeBatchID string
	Category      string
	SetName       string
	PlayerName    string
	TeamName      string
	CardNumber    string
	Parallel      string
	SerialNumber  int
	SerialTotal   int
	Condition     string
	PriceCents    int64
	FrontImageURL string
	BackImageURL  string
	SlotLocation  string
	Status        CardStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CardFilter narrows catalog listings. Zero values mean "no constraint".
type CardFilter struct {
	Category   string
	PlayerName string
	SetName    string
	Parallel   string
	Condition  string
	Status     CardStatus
	MinPrice   *int64
	MaxPrice   *int64
	Skip       int
	Take       int
}
