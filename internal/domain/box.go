package domain

import "time"

// BuyerBox is a buyer's set of provisionally reserved cards, created lazily on
// the first claim. Every card it references must currently be reserved, and a
// card belongs to at most one box.
type BuyerBox struct {
	ID        string
	BuyerID   string
	CreatedAt time.Time
}

// BoxItem records a single card held in a buyer box.
type BoxItem struct {
	ID      string
	BoxID   string
	CardID  string
	AddedAt time.Time
}

// BoxEntry pairs a membership record with the current card snapshot.
type BoxEntry struct {
	Item BoxItem
	Card Card
}

// BoxView is what a buyer sees: entries in claim order plus the total computed
// at read time.
type BoxView struct {
	BuyerID         string
	Entries         []BoxEntry
	TotalPriceCents int64
}
