package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	sessions *session.Registry
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *session.Registry, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type ShippingMethodRequestDTO struct {
	ID string `json:"id"`
}

type PaymentRequestDTO struct {
	MethodID   string                 `json:"method_id"`
	CreditCard *domain.CreditCardInfo `json:"credit_card,omitempty"`
}

type CheckoutPatchRequestDTO struct {
	AgreeToTerms          *bool `json:"agree_to_terms,omitempty"`
	SubscribeToNewsletter *bool `json:"subscribe_to_newsletter,omitempty"`
}

type ShippingMethodsResponse struct {
	ShippingMethods []domain.ShippingMethod `json:"shippingMethods"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []domain.PaymentMethod `json:"paymentMethods"`
}

type CountriesResponse struct {
	Countries []domain.Country `json:"countries"`
}

func (h *CheckoutHandler) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), getSessionID(r.Context()))
}

// CheckoutResponse is the wizard state as the UI renders it.
type CheckoutResponse struct {
	checkout.State
	FormattedSummary FormattedSummary `json:"formattedSummary"`
	// ResumeStep is the first step that still needs input.
	ResumeStep int `json:"resumeStep"`
}

type FormattedSummary struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func formatSummary(s domain.CheckoutSummary) FormattedSummary {
	return FormattedSummary{
		Subtotal: pricing.FormatPrice(s.Subtotal),
		Shipping: pricing.FormatPrice(s.Shipping),
		Tax:      pricing.FormatPrice(s.Tax),
		Total:    pricing.FormatPrice(s.Total),
	}
}

// respondCheckout writes the wizard state. Card number and CVV never go back out.
func respondCheckout(w http.ResponseWriter, status int, st checkout.State) {
	if p := st.Data.PaymentInfo; p != nil && p.CreditCard != nil {
		card := *p.CreditCard
		card.CardNumber = validation.MaskCardNumber(card.CardNumber)
		card.CVV = ""
		payment := *p
		payment.CreditCard = &card
		st.Data.PaymentInfo = &payment
	}
	respondJSON(w, status, CheckoutResponse{
		State:            st,
		FormattedSummary: formatSummary(st.Summary),
		ResumeStep:       validation.NextIncompleteStep(st.Data),
	})
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondCheckout(w, http.StatusOK, h.session(r).Checkout.State())
}

func (h *CheckoutHandler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ShippingMethodsResponse{ShippingMethods: checkout.ShippingMethods()})
}

func (h *CheckoutHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, PaymentMethodsResponse{PaymentMethods: checkout.PaymentMethods()})
}

func (h *CheckoutHandler) Countries(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CountriesResponse{Countries: checkout.Countries()})
}

func (h *CheckoutHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	var req domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	co := h.session(r).Checkout
	co.SetShippingAddress(req)
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) SetBillingAddress(w http.ResponseWriter, r *http.Request) {
	var req domain.BillingAddress
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	co := h.session(r).Checkout
	co.SetBillingAddress(req)
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	var req ShippingMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, ok := checkout.FindShippingMethod(req.ID)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_shipping_method", "unknown shipping method")
		return
	}

	co := h.session(r).Checkout
	co.SetShippingMethod(method)
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, ok := checkout.FindPaymentMethod(req.MethodID)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment method")
		return
	}

	info := domain.PaymentInfo{Method: method}
	if method.Type == domain.PaymentCreditCard {
		info.CreditCard = req.CreditCard
	}

	co := h.session(r).Checkout
	co.SetPaymentInfo(info)
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req CheckoutPatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	co := h.session(r).Checkout
	co.UpdateCheckoutData(domain.CheckoutPatch{
		AgreeToTerms:          req.AgreeToTerms,
		SubscribeToNewsletter: req.SubscribeToNewsletter,
	})
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	co := h.session(r).Checkout
	if err := co.NextStep(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) Previous(w http.ResponseWriter, r *http.Request) {
	co := h.session(r).Checkout
	co.PreviousStep()
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) GoToStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_step", "step must be an integer")
		return
	}

	co := h.session(r).Checkout
	if err := co.GoToStep(step); err != nil {
		respondDomainError(w, err)
		return
	}
	respondCheckout(w, http.StatusOK, co.State())
}

// Resume returns the shopper to the first step that still needs input.
func (h *CheckoutHandler) Resume(w http.ResponseWriter, r *http.Request) {
	co := h.session(r).Checkout
	co.Resume()
	respondCheckout(w, http.StatusOK, co.State())
}

func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	co := h.session(r).Checkout
	co.Reset()
	respondCheckout(w, http.StatusOK, co.State())
}

// PlaceOrder submits the checkout; a placed order empties the session's cart.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	result, err := h.session(r).PlaceOrder(ctx)
	switch {
	case errors.Is(err, domain.ErrIncompleteCheckout), errors.Is(err, domain.ErrEmptyCart):
		respondDomainError(w, err)
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "order_failed", "Failed to submit order")
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
