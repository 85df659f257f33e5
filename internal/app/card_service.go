package app

import (
	"context"

	"github.com/slabhouse/marketplace/internal/clock"
	"github.com/slabhouse/marketplace/internal/domain"
)

type CardRepository interface {
	CreateCard(ctx context.Context, card domain.Card) error
	GetCard(ctx context.Context, cardID string) (domain.Card, error)
	UpdateCard(ctx context.Context, card domain.Card) error
	DeleteCard(ctx context.Context, cardID string) error
	ListCards(ctx context.Context, filter domain.CardFilter) ([]domain.Card, int, error)
	SetCardImages(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// CardService is the intake and catalog surface for cards. It never writes
// card lifecycle state; that belongs to the claim and checkout paths.
type CardService struct {
	repo  CardRepository
	clock clock.Clock
}

func NewCardService(repo CardRepository, clk clock.Clock) *CardService {
	return &CardService{
		repo:  repo,
		clock: clk,
	}
}

type CreateCardInput struct {
	SellerID      string
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
	SlotLocation  string
}

func (s *CardService) Create(ctx context.Context, in CreateCardInput) (domain.Card, error) {
	if in.SellerID == "" || in.Category == "" || in.SetName == "" || in.PlayerName == "" {
		return domain.Card{}, domain.ErrCardDetailsMissing
	}
	if in.PriceCents < 0 {
		return domain.Card{}, domain.ErrInvalidPrice
	}

	now := s.clock.Now()
	card := domain.Card{
		ID:            newID(),
		SellerID:      in.SellerID,
		IntakeBatchID: in.IntakeBatchID,
		Category:      in.Category,
		SetName:       in.SetName,
		PlayerName:    in.PlayerName,
		TeamName:      in.TeamName,
		CardNumber:    in.CardNumber,
		Parallel:      in.Parallel,
		SerialNumber:  in.SerialNumber,
		SerialTotal:   in.SerialTotal,
		Condition:     in.Condition,
		PriceCents:    in.PriceCents,
		SlotLocation:  in.SlotLocation,
		Status:        domain.CardStatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if card.Parallel == "" {
		card.Parallel = "Base"
	}
	if card.Condition == "" {
		card.Condition = "near-mint"
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

func (s *CardService) Get(ctx context.Context, cardID string) (domain.Card, error) {
	return s.repo.GetCard(ctx, cardID)
}

type UpdateCardInput struct {
	Category     *string
	SetName      *string
	PlayerName   *string
	TeamName     *string
	CardNumber   *string
	Parallel     *string
	SerialNumber *int
	SerialTotal  *int
	Condition    *string
	PriceCents   *int64
	SlotLocation *string
}

// Update edits descriptive attributes only. Status is deliberately absent from
// the input; lifecycle state moves through the transition guard.
func (s *CardService) Update(ctx context.Context, cardID string, in UpdateCardInput) (domain.Card, error) {
	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return domain.Card{}, err
	}

	if in.Category != nil {
		card.Category = *in.Category
	}
	if in.SetName != nil {
		card.SetName = *in.SetName
	}
	if in.PlayerName != nil {
		card.PlayerName = *in.PlayerName
	}
	if in.TeamName != nil {
		card.TeamName = *in.TeamName
	}
	if in.CardNumber != nil {
		card.CardNumber = *in.CardNumber
	}
	if in.Parallel != nil {
		card.Parallel = *in.Parallel
	}
	if in.SerialNumber != nil {
		card.SerialNumber = *in.SerialNumber
	}
	if in.SerialTotal != nil {
		card.SerialTotal = *in.SerialTotal
	}
	if in.Condition != nil {
		card.Condition = *in.Condition
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return domain.Card{}, domain.ErrInvalidPrice
		}
		card.PriceCents = *in.PriceCents
	}
	if in.SlotLocation != nil {
		card.SlotLocation = *in.SlotLocation
	}
	card.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateCard(ctx, card); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// Delete removes a card that no box or order references.
func (s *CardService) Delete(ctx context.Context, cardID string) error {
	return s.repo.DeleteCard(ctx, cardID)
}

func (s *CardService) List(ctx context.Context, filter domain.CardFilter) ([]domain.Card, int, error) {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Take <= 0 {
		filter.Take = defaultPageSize
	}
	if filter.Take > maxPageSize {
		filter.Take = maxPageSize
	}
	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		return nil, 0, domain.ErrInvalidPrice
	}
	return s.repo.ListCards(ctx, filter)
}

// UpdateImages records uploaded image URLs; empty arguments leave the
// corresponding side untouched.
func (s *CardService) UpdateImages(ctx context.Context, cardID, frontURL, backURL string) (domain.Card, error) {
	return s.repo.SetCardImages(ctx, cardID, frontURL, backURL)
}
