package app

import (
	"context"

	"github.com/slabhouse/marketplace/internal/clock"
	"github.com/slabhouse/marketplace/internal/domain"
	"github.com/slabhouse/marketplace/internal/telemetry"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetBoxByBuyerForUpdate(ctx context.Context, buyerID string) (*domain.BuyerBox, error)
	ListBoxEntries(ctx context.Context, boxID string) ([]domain.BoxEntry, error)
	DeleteBoxItems(ctx context.Context, boxID string) error
	TransitionCardStatus(ctx context.Context, cardID string, from, to domain.CardStatus) (domain.Card, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
}

// CheckoutService converts a buyer's box into an order atomically, and serves
// order reads and fulfillment status updates.
type CheckoutService struct {
	repo  CheckoutRepository
	clock clock.Clock
}

func NewCheckoutService(repo CheckoutRepository, clk clock.Clock) *CheckoutService {
	return &CheckoutService{
		repo:  repo,
		clock: clk,
	}
}

// Checkout finalizes the buyer's box. Within one transaction it re-validates
// every card is still reserved, creates the order with captured per-card
// prices, moves every card reserved->sold, and empties the box. Any failure
// leaves the system exactly as it was before the call.
func (s *CheckoutService) Checkout(ctx context.Context, buyerID string) (domain.OrderView, error) {
	ctx, span := telemetry.StartSpan(ctx, "checkout")
	defer span.End()

	now := s.clock.Now()
	var result domain.OrderView

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		box, err := s.repo.GetBoxByBuyerForUpdate(txCtx, buyerID)
		if err != nil {
			return err
		}
		if box == nil {
			return domain.ErrBoxEmpty
		}

		entries, err := s.repo.ListBoxEntries(txCtx, box.ID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return domain.ErrBoxEmpty
		}

		// Hard abort when any reservation vanished between view and checkout.
		// Dropping stale cards silently would change what the buyer is charged.
		var stale []string
		for _, e := range entries {
			if e.Card.Status != domain.CardStatusReserved {
				stale = append(stale, e.Card.ID)
			}
		}
		if len(stale) > 0 {
			return &domain.StaleReservationError{CardIDs: stale}
		}

		order := domain.Order{
			ID:        newID(),
			BuyerID:   buyerID,
			Status:    domain.OrderStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(entries))
		var total int64
		for _, e := range entries {
			items = append(items, domain.OrderItem{
				ID:         newID(),
				OrderID:    order.ID,
				CardID:     e.Card.ID,
				PriceCents: e.Card.PriceCents,
			})
			total += e.Card.PriceCents
		}
		if err := s.repo.CreateOrderItems(txCtx, items); err != nil {
			return err
		}

		for _, e := range entries {
			if _, err := transitionCard(txCtx, s.repo, e.Card.ID, domain.CardStatusReserved, domain.CardStatusSold); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteBoxItems(txCtx, box.ID); err != nil {
			return err
		}

		result = domain.OrderView{Order: order, Items: items, TotalPriceCents: total}
		return nil
	})
	if err != nil {
		return domain.OrderView{}, err
	}
	return result, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (domain.OrderView, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	return s.buildView(ctx, order)
}

func (s *CheckoutService) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	orders, err := s.repo.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.OrderView, 0, len(orders))
	for _, order := range orders {
		view, err := s.buildView(ctx, order)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// UpdateStatus advances the order through pending -> shipped -> completed. The
// row is locked first so a lost race surfaces against the fresh status instead
// of silently overwriting a concurrent update.
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanAdvanceTo(next) {
			return &domain.InvalidTransitionError{From: string(order.Status), To: string(next)}
		}
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, order.Status, next); err != nil {
			return err
		}
		order.Status = next
		order.UpdatedAt = s.clock.Now()
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

func (s *CheckoutService) buildView(ctx context.Context, order domain.Order) (domain.OrderView, error) {
	items, err := s.repo.ListOrderItems(ctx, order.ID)
	if err != nil {
		return domain.OrderView{}, err
	}
	view := domain.OrderView{Order: order, Items: items}
	for _, item := range items {
		view.TotalPriceCents += item.PriceCents
	}
	return view, nil
}
