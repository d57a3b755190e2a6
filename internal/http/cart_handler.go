package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	sessions *session.Registry
	timeout  time.Duration
}

func NewCartHandler(sessions *session.Registry, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), getSessionID(r.Context()))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session(r).Cart.State().Cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s := h.session(r)
	if err := s.Cart.AddToCart(ctx, req.ProductID, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.Cart.State().Cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s := h.session(r)
	if err := s.Cart.UpdateCartItem(ctx, chi.URLParam(r, "item_id"), req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.State().Cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	s := h.session(r)
	if err := s.Cart.RemoveFromCart(ctx, chi.URLParam(r, "item_id")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Cart.State().Cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	s := h.session(r)
	s.Cart.ClearCart(ctx)
	respondJSON(w, http.StatusOK, s.Cart.State().Cart)
}

