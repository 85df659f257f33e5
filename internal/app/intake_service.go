package app

import (
	"context"

	"github.com/slabhouse/marketplace/internal/clock"
	"github.com/slabhouse/marketplace/internal/domain"
)

type IntakeRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBatch(ctx context.Context, batch domain.IntakeBatch) error
	GetBatch(ctx context.Context, batchID string) (domain.IntakeBatch, error)
	GetBatchForUpdate(ctx context.Context, batchID string) (domain.IntakeBatch, error)
	ListBatchesBySeller(ctx context.Context, sellerID string) ([]domain.IntakeBatch, error)
	UpdateBatchStatus(ctx context.Context, batchID string, from, to domain.IntakeBatchStatus) error
}

// IntakeService tracks seller submissions through the intake workflow.
type IntakeService struct {
	repo  IntakeRepository
	clock clock.Clock
}

func NewIntakeService(repo IntakeRepository, clk clock.Clock) *IntakeService {
	return &IntakeService{
		repo:  repo,
		clock: clk,
	}
}

func (s *IntakeService) CreateBatch(ctx context.Context, sellerID string) (domain.IntakeBatch, error) {
	if sellerID == "" {
		return domain.IntakeBatch{}, domain.ErrSellerRequired
	}

	now := s.clock.Now()
	batch := domain.IntakeBatch{
		ID:        newID(),
		SellerID:  sellerID,
		Status:    domain.IntakeBatchStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return domain.IntakeBatch{}, err
	}
	return batch, nil
}

func (s *IntakeService) GetBatch(ctx context.Context, batchID string) (domain.IntakeBatch, error) {
	return s.repo.GetBatch(ctx, batchID)
}

func (s *IntakeService) ListBatchesBySeller(ctx context.Context, sellerID string) ([]domain.IntakeBatch, error) {
	if sellerID == "" {
		return nil, domain.ErrSellerRequired
	}
	return s.repo.ListBatchesBySeller(ctx, sellerID)
}

// UpdateStatus advances a batch one step through
// pending -> received -> processing -> completed, with the same
// compare-and-swap discipline as order status updates.
func (s *IntakeService) UpdateStatus(ctx context.Context, batchID string, next domain.IntakeBatchStatus) (domain.IntakeBatch, error) {
	var result domain.IntakeBatch

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		batch, err := s.repo.GetBatchForUpdate(txCtx, batchID)
		if err != nil {
			return err
		}
		if !batch.Status.CanAdvanceTo(next) {
			return &domain.InvalidTransitionError{From: string(batch.Status), To: string(next)}
		}
		if err := s.repo.UpdateBatchStatus(txCtx, batchID, batch.Status, next); err != nil {
			return err
		}
		batch.Status = next
		batch.UpdatedAt = s.clock.Now()
		result = batch
		return nil
	})
	if err != nil {
		return domain.IntakeBatch{}, err
	}
	return result, nil
}
