package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/slabhouse/marketplace/internal/domain"
)

// CheckoutService is the minimal interface needed for checkout and orders.
type CheckoutService interface {
	Checkout(ctx context.Context, buyerID string) (domain.OrderView, error)
	GetOrder(ctx context.Context, orderID string) (domain.OrderView, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error)
	UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error)
}

// HandleCheckout returns an HTTP handler that purchases every card in a buyer
// box in a single all-or-nothing transaction.
func HandleCheckout(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Checkout(r.Context(), mux.Vars(r)["buyerId"])
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderViewResponse(view))
	}
}

// HandleGetOrder returns an HTTP handler for fetching a single order.
func HandleGetOrder(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetOrder(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toOrderViewResponse(view))
	}
}

// HandleListOrders returns an HTTP handler for a buyer's order history.
func HandleListOrders(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID := r.URL.Query().Get("buyer_id")
		if buyerID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "buyer_id is required")
			return
		}

		views, err := svc.ListOrdersByBuyer(r.Context(), buyerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]orderViewResponse, 0, len(views))
		for _, view := range views {
			resp = append(resp, toOrderViewResponse(view))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleUpdateOrderStatus returns an HTTP handler that advances fulfillment
// status one step at a time.
func HandleUpdateOrderStatus(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateOrderStatusRequest
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

		order, err := svc.UpdateStatus(r.Context(), mux.Vars(r)["id"], domain.OrderStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orderResponse{
			ID:        order.ID,
			BuyerID:   order.BuyerID,
			Status:    string(order.Status),
			CreatedAt: order.CreatedAt,
			UpdatedAt: order.UpdatedAt,
		})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderItemResponse struct {
	CardID     string `json:"card_id"`
	PriceCents int64  `json:"price_cents"`
}

type orderViewResponse struct {
	orderResponse
	Items           []orderItemResponse `json:"items"`
	TotalPriceCents int64               `json:"total_price_cents"`
}

func toOrderViewResponse(view domain.OrderView) orderViewResponse {
	resp := orderViewResponse{
		orderResponse: orderResponse{
			ID:        view.Order.ID,
			BuyerID:   view.Order.BuyerID,
			Status:    string(view.Order.Status),
			CreatedAt: view.Order.CreatedAt,
			UpdatedAt: view.Order.UpdatedAt,
		},
		Items:           make([]orderItemResponse, 0, len(view.Items)),
		TotalPriceCents: view.TotalPriceCents,
	}
	for _, item := range view.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			CardID:     item.CardID,
			PriceCents: item.PriceCents,
		})
	}
	return resp
}
