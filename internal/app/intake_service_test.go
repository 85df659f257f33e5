package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slabhouse/marketplace/internal/clock"
	"github.com/slabhouse/marketplace/internal/domain"
)

func TestIntakeService_CreateBatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates pending batch", func(t *testing.T) {
		repo := newFakeIntakeRepo()
		svc := NewIntakeService(repo, clock.NewFixed(now))

		batch, err := svc.CreateBatch(context.Background(), "seller-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if batch.ID == "" {
			t.Fatalf("expected batch ID to be set")
		}
		if batch.Status != domain.IntakeBatchStatusPending {
			t.Fatalf("expected pending, got %s", batch.Status)
		}
		if len(repo.batches) != 1 {
			t.Fatalf("expected 1 stored batch, got %d", len(repo.batches))
		}
	})

	t.Run("rejects missing seller", func(t *testing.T) {
		svc := NewIntakeService(newFakeIntakeRepo(), clock.NewFixed(now))

		_, err := svc.CreateBatch(context.Background(), "")
		if !errors.Is(err, domain.ErrSellerRequired) {
			t.Fatalf("expected ErrSellerRequired, got %v", err)
		}
	})
}

func TestIntakeService_UpdateStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(status domain.IntakeBatchStatus) (*IntakeService, *fakeIntakeRepo) {
		repo := newFakeIntakeRepo()
		repo.batches["batch-1"] = domain.IntakeBatch{ID: "batch-1", SellerID: "seller-1", Status: status}
		return NewIntakeService(repo, clock.NewFixed(now)), repo
	}

	t.Run("walks the full workflow one step at a time", func(t *testing.T) {
		svc, repo := makeSvc(domain.IntakeBatchStatusPending)

		steps := []domain.IntakeBatchStatus{
			domain.IntakeBatchStatusReceived,
			domain.IntakeBatchStatusProcessing,
			domain.IntakeBatchStatusCompleted,
		}
		for _, next := range steps {
			batch, err := svc.UpdateStatus(context.Background(), "batch-1", next)
			if err != nil {
				t.Fatalf("advance to %s: %v", next, err)
			}
			if batch.Status != next {
				t.Fatalf("expected %s, got %s", next, batch.Status)
			}
		}
		if repo.batches["batch-1"].Status != domain.IntakeBatchStatusCompleted {
			t.Fatalf("expected stored batch completed, got %s", repo.batches["batch-1"].Status)
		}
	})

	t.Run("rejects skipping a step", func(t *testing.T) {
		svc, _ := makeSvc(domain.IntakeBatchStatusPending)

		_, err := svc.UpdateStatus(context.Background(), "batch-1", domain.IntakeBatchStatusCompleted)
		var invalid *domain.InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("unknown batch reports not found", func(t *testing.T) {
		svc := NewIntakeService(newFakeIntakeRepo(), clock.NewFixed(now))

		_, err := svc.UpdateStatus(context.Background(), "missing", domain.IntakeBatchStatusReceived)
		if !errors.Is(err, domain.ErrBatchNotFound) {
			t.Fatalf("expected ErrBatchNotFound, got %v", err)
		}
	})
}

func TestIntakeService_ListBatchesBySeller(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("rejects missing seller", func(t *testing.T) {
		svc := NewIntakeService(newFakeIntakeRepo(), clock.NewFixed(now))

		_, err := svc.ListBatchesBySeller(context.Background(), "")
		if !errors.Is(err, domain.ErrSellerRequired) {
			t.Fatalf("expected ErrSellerRequired, got %v", err)
		}
	})
}

type fakeIntakeRepo struct {
	batches map[string]domain.IntakeBatch
}

func newFakeIntakeRepo() *fakeIntakeRepo {
	return &fakeIntakeRepo{batches: make(map[string]domain.IntakeBatch)}
}

func (f *fakeIntakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeIntakeRepo) CreateBatch(_ context.Context, batch domain.IntakeBatch) error {
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeIntakeRepo) GetBatch(_ context.Context, batchID string) (domain.IntakeBatch, error) {
	batch, ok := f.batches[batchID]
	if !ok {
		return domain.IntakeBatch{}, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (f *fakeIntakeRepo) GetBatchForUpdate(ctx context.Context, batchID string) (domain.IntakeBatch, error) {
	return f.GetBatch(ctx, batchID)
}

func (f *fakeIntakeRepo) ListBatchesBySeller(_ context.Context, sellerID string) ([]domain.IntakeBatch, error) {
	var out []domain.IntakeBatch
	for _, batch := range f.batches {
		if batch.SellerID == sellerID {
			out = append(out, batch)
		}
	}
	return out, nil
}

func (f *fakeIntakeRepo) UpdateBatchStatus(_ context.Context, batchID string, from, to domain.IntakeBatchStatus) error {
	batch, ok := f.batches[batchID]
	if !ok || batch.Status != from {
		return domain.ErrBatchNotFound
	}
	batch.Status = to
	f.batches[batchID] = batch
	return nil
}
