package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slabhouse/marketplace/internal/domain"
)

const (
	codeMethodNotAllowed        = "method_not_allowed"
	codeNotFound                = "not_found"
	codeInvalidRequestBody      = "invalid_request_body"
	codeInvalidID               = "invalid_id"
	codeInvalidPrice            = "invalid_price"
	codeCardDetailsRequired     = "card_details_required"
	codeSellerRequired          = "seller_required"
	codeCardNotFound            = "card_not_found"
	codeCardUnavailable         = "card_unavailable"
	codeCardConflict            = "card_conflict"
	codeCardReferenced          = "card_referenced"
	codeAlreadyInBox            = "already_in_box"
	codeBoxItemNotFound         = "box_item_not_found"
	codeEmptyBox                = "empty_box"
	codeStaleReservation        = "stale_reservation"
	codeOrderNotFound           = "order_not_found"
	codeBatchNotFound           = "batch_not_found"
	codeInvalidStatusTransition = "invalid_status_transition"
	codeStorageUnavailable      = "storage_unavailable"
	codeForbidden               = "forbidden"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	CardIDs []string `json:"card_ids,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorWithCards(w, status, code, msg, nil)
}

func writeErrorWithCards(w http.ResponseWriter, status int, code, msg string, cardIDs []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:   msg,
		Code:    code,
		CardIDs: cardIDs,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the shared domain errors to HTTP responses. Handlers
// call it from their default branches so each file only spells out the
// endpoint-specific cases.
func writeDomainError(w http.ResponseWriter, err error) {
	var unavailable *domain.CardUnavailableError
	if errors.As(err, &unavailable) {
		writeError(w, http.StatusConflict, codeCardUnavailable, unavailable.Error())
		return
	}
	var stale *domain.StaleReservationError
	if errors.As(err, &stale) {
		writeErrorWithCards(w, http.StatusConflict, codeStaleReservation, stale.Error(), stale.CardIDs)
		return
	}
	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		writeError(w, http.StatusConflict, codeInvalidStatusTransition, transition.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrCardDetailsMissing):
		writeError(w, http.StatusBadRequest, codeCardDetailsRequired, err.Error())
	case errors.Is(err, domain.ErrSellerRequired):
		writeError(w, http.StatusBadRequest, codeSellerRequired, err.Error())
	case errors.Is(err, domain.ErrCardNotFound):
		writeError(w, http.StatusNotFound, codeCardNotFound, err.Error())
	case errors.Is(err, domain.ErrBoxItemNotFound):
		writeError(w, http.StatusNotFound, codeBoxItemNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrBatchNotFound):
		writeError(w, http.StatusNotFound, codeBatchNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyInBox):
		writeError(w, http.StatusConflict, codeAlreadyInBox, err.Error())
	case errors.Is(err, domain.ErrCardConflict):
		writeError(w, http.StatusConflict, codeCardConflict, err.Error())
	case errors.Is(err, domain.ErrCardReferenced):
		writeError(w, http.StatusConflict, codeCardReferenced, err.Error())
	case errors.Is(err, domain.ErrBoxEmpty):
		writeError(w, http.StatusBadRequest, codeEmptyBox, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
