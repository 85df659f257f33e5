package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/slabhouse/marketplace/internal/domain"
)

// IntakeService is the minimal interface needed for the intake batch endpoints.
type IntakeService interface {
	CreateBatch(ctx context.Context, sellerID string) (domain.IntakeBatch, error)
	GetBatch(ctx context.Context, batchID string) (domain.IntakeBatch, error)
	ListBatchesBySeller(ctx context.Context, sellerID string) ([]domain.IntakeBatch, error)
	UpdateStatus(ctx context.Context, batchID string, next domain.IntakeBatchStatus) (domain.IntakeBatch, error)
}

// HandleCreateBatch returns an HTTP handler for registering an intake batch.
func HandleCreateBatch(svc IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBatchRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		batch, err := svc.CreateBatch(r.Context(), req.SellerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toBatchResponse(batch))
	}
}

// HandleGetBatch returns an HTTP handler for fetching a single intake batch.
func HandleGetBatch(svc IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := svc.GetBatch(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toBatchResponse(batch))
	}
}

// HandleListBatches returns an HTTP handler for a seller's intake batches.
func HandleListBatches(svc IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID := r.URL.Query().Get("seller_id")
		if sellerID == "" {
			writeError(w, http.StatusBadRequest, codeSellerRequired, "seller_id is required")
			return
		}

		batches, err := svc.ListBatchesBySeller(r.Context(), sellerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]batchResponse, 0, len(batches))
		for _, batch := range batches {
			resp = append(resp, toBatchResponse(batch))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleUpdateBatchStatus returns an HTTP handler that advances intake status
// one step at a time.
func HandleUpdateBatchStatus(svc IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateBatchStatusRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "status is required")
			return
		}

		batch, err := svc.UpdateStatus(r.Context(), mux.Vars(r)["id"], domain.IntakeBatchStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toBatchResponse(batch))
	}
}

type createBatchRequest struct {
	SellerID string `json:"seller_id"`
}

type updateBatchStatusRequest struct {
	Status string `json:"status"`
}

type batchResponse struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"seller_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBatchResponse(batch domain.IntakeBatch) batchResponse {
	return batchResponse{
		ID:        batch.ID,
		SellerID:  batch.SellerID,
		Status:    string(batch.Status),
		CreatedAt: batch.CreatedAt,
		UpdatedAt: batch.UpdatedAt,
	}
}
