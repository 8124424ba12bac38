package orderapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type AddItemRequestDTO struct {
	ItemID   domain.ItemID `json:"item_id"`
	ForceNew bool          `json:"force_new"`
}

type RemoveItemRequestDTO struct {
	ItemID domain.ItemID `json:"item_id"`
}

type mutationResponse struct {
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
	Message           string `json:"message,omitempty"`
	CurrentRestaurant string `json:"current_restaurant,omitempty"`
}

type quantitiesResponse struct {
	Success     bool                              `json:"success"`
	Quantities  map[domain.ItemID]int             `json:"quantities"`
	TotalPrices map[domain.ItemID]decimal.Decimal `json:"total_prices,omitempty"`
}

type cartQuantityResponse struct {
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Routes mounts the four cart endpoints behind the session and CSRF checks.
func (h *Handler) Routes(csrfCookie, csrfHeader string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)
		r.Use(CSRFMiddleware(csrfCookie, csrfHeader))

		r.Post("/add-to-order/", h.AddItem)
		r.Post("/remove-from-order/", h.RemoveItem)
		r.Get("/get-item-quantities/", h.ItemQuantities)
		r.Get("/get-cart-quantity/", h.CartQuantity)
	})
	return r
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		respondJSON(w, http.StatusBadRequest, mutationResponse{Error: "Item ID is required"})
		return
	}

	err := h.svc.AddItem(r.Context(), userID, req.ItemID, req.ForceNew)
	var conflict *ConflictError
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, mutationResponse{Success: true})
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusOK, mutationResponse{
			Error:             "different_restaurant",
			Message:           conflict.Error(),
			CurrentRestaurant: conflict.RestaurantName,
		})
	default:
		h.respondServiceError(w, r, err)
	}
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req RemoveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		respondJSON(w, http.StatusBadRequest, mutationResponse{Error: "Item ID is required"})
		return
	}

	if err := h.svc.RemoveItem(r.Context(), userID, req.ItemID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, mutationResponse{Success: true})
}

// ItemQuantities omits total_prices when the cart is empty.
func (h *Handler) ItemQuantities(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Quantities(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	resp := quantitiesResponse{Success: true, Quantities: q.Quantities}
	if len(q.Quantities) > 0 {
		resp.TotalPrices = q.TotalPrices
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) CartQuantity(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.Aggregate(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cartQuantityResponse{Quantity: agg.Quantity, TotalPrice: agg.TotalPrice})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrNotInCart):
		respondJSON(w, http.StatusNotFound, mutationResponse{Error: err.Error()})
	default:
		h.log.ErrorContext(r.Context(), "cart request failed",
			"path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		respondJSON(w, http.StatusInternalServerError, mutationResponse{Error: "An error occurred"})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
