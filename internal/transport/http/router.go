package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/slabhouse/marketplace/internal/storage/blob"
)

// RouterConfig carries the services and options the HTTP surface needs.
type RouterConfig struct {
	Cards    CardService
	Boxes    BoxService
	Checkout CheckoutService
	Intake   IntakeService
	Search   SearchService
	Blobs    blob.Store

	// UploadDir, when set, is served read-only under /uploads/.
	UploadDir string
}

// NewRouter wires every route of the service.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})
	r.Use(Tracing)

	r.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/cards", HandleCreateCard(cfg.Cards)).Methods(http.MethodPost)
	r.HandleFunc("/cards", HandleListCards(cfg.Cards)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{id}", HandleGetCard(cfg.Cards)).Methods(http.MethodGet)
	r.HandleFunc("/cards/{id}", HandleUpdateCard(cfg.Cards)).Methods(http.MethodPatch)
	r.HandleFunc("/cards/{id}", HandleDeleteCard(cfg.Cards)).Methods(http.MethodDelete)
	r.HandleFunc("/cards/{id}/images", HandleUploadCardImages(cfg.Cards, cfg.Blobs)).Methods(http.MethodPost)

	r.HandleFunc("/boxes/{buyerId}", HandleGetBox(cfg.Boxes)).Methods(http.MethodGet)
	r.HandleFunc("/boxes/{buyerId}", HandleClearBox(cfg.Boxes)).Methods(http.MethodDelete)
	r.HandleFunc("/boxes/{buyerId}/items", HandleClaimCard(cfg.Boxes)).Methods(http.MethodPost)
	r.HandleFunc("/boxes/{buyerId}/items/{cardId}", HandleReleaseCard(cfg.Boxes)).Methods(http.MethodDelete)
	r.HandleFunc("/boxes/{buyerId}/checkout", HandleCheckout(cfg.Checkout)).Methods(http.MethodPost)

	r.HandleFunc("/orders", HandleListOrders(cfg.Checkout)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", HandleGetOrder(cfg.Checkout)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/status", HandleUpdateOrderStatus(cfg.Checkout)).Methods(http.MethodPatch)

	r.HandleFunc("/batches", HandleCreateBatch(cfg.Intake)).Methods(http.MethodPost)
	r.HandleFunc("/batches", HandleListBatches(cfg.Intake)).Methods(http.MethodGet)
	r.HandleFunc("/batches/{id}", HandleGetBatch(cfg.Intake)).Methods(http.MethodGet)
	r.HandleFunc("/batches/{id}/status", HandleUpdateBatchStatus(cfg.Intake)).Methods(http.MethodPatch)

	r.HandleFunc("/search/suggest", HandleSuggest(cfg.Search)).Methods(http.MethodGet)
	r.HandleFunc("/search/popular", HandlePopular(cfg.Search)).Methods(http.MethodGet)
	r.HandleFunc("/search/filters", HandleFilterOptions(cfg.Search)).Methods(http.MethodGet)

	if cfg.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))),
		).Methods(http.MethodGet)
	}

	return r
}
