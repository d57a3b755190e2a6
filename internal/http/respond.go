package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondDomainError maps store and repository errors to HTTP statuses. Validation
// failures carry the field messages in details.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		code := "validation_failed"
		message := domain.ErrValidationFailed.Error()
		if errors.Is(err, domain.ErrIncompleteCheckout) {
			code = "incomplete_checkout"
			message = domain.ErrIncompleteCheckout.Error()
		}
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   message,
			Code:    code,
			Details: verr.Fields,
		})
		return
	}

	var httpStatus int
	var code string

	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, domain.ErrItemNotFound):
		httpStatus, code = http.StatusNotFound, "item_not_found"
	case errors.Is(err, order.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		httpStatus, code = http.StatusConflict, "out_of_stock"
	case errors.Is(err, domain.ErrNoCartFound):
		httpStatus, code = http.StatusConflict, "no_cart"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, code = http.StatusConflict, "empty_cart"
	case errors.Is(err, domain.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidStep):
		httpStatus, code = http.StatusBadRequest, "invalid_step"
	case errors.Is(err, domain.ErrIncompleteCheckout):
		httpStatus, code = http.StatusUnprocessableEntity, "incomplete_checkout"
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		log.Error().Err(err).Msg("unhandled request error")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
