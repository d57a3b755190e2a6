package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/go-chi/chi/v5"
)

// OrderReader is the read side of the order service.
type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, sessionID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

// List returns the orders placed by the calling session, newest first.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, getSessionID(r.Context()))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}

// Get answers 404 for orders of other sessions too.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	o, err := h.orders.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if o.SessionID != getSessionID(r.Context()) {
		respondDomainError(w, order.ErrOrderNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
