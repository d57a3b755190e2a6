// Package order turns a completed checkout into a stored order and announces it on Kafka
// through a transactional outbox.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo  Repository
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: func() string { return "ORDER-" + uuid.NewString() },
	}
}

// Submit stores the order. The checkout store has already validated the request.
func (s *Service) Submit(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	o := s.buildOrder(req)

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return domain.OrderResult{Success: false, Error: "Failed to submit order"}, fmt.Errorf("create order: %w", err)
	}

	s.log.Info().
		Str("order_id", o.ID).
		Str("session_id", o.SessionID).
		Int64("total", o.Summary.Total.Amount).
		Str("total_display", pricing.FormatPrice(o.Summary.Total)).
		Msg("order created")

	return domain.OrderResult{Success: true, OrderID: o.ID}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	return s.repo.ListOrdersBySession(ctx, sessionID)
}

func (s *Service) buildOrder(req domain.OrderRequest) *domain.Order {
	data := req.Data

	items := make([]domain.OrderItem, 0, len(req.Cart.Items))
	for _, item := range req.Cart.Items {
		items = append(items, domain.OrderItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			SKU:         item.Product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price.Amount,
			TotalPrice:  item.TotalPrice.Amount,
		})
	}

	o := &domain.Order{
		ID:         s.newID(),
		SessionID:  req.SessionID,
		CartID:     req.Cart.ID,
		Items:      items,
		Newsletter: data.SubscribeToNewsletter,
		CreatedAt:  s.now().UTC(),
	}

	methodID := ""
	if data.ShippingMethod != nil {
		methodID = data.ShippingMethod.ID
	}
	o.ShippingMethodID = methodID
	o.Summary = pricing.CheckoutSummary(req.Cart, methodID)

	if data.ShippingAddress != nil {
		o.ShippingAddress = *data.ShippingAddress
	}
	if data.BillingAddress != nil {
		billing := *data.BillingAddress
		o.BillingAddress = &billing
	}
	if data.PaymentInfo != nil {
		o.PaymentMethodType = data.PaymentInfo.Method.Type
		if card := data.PaymentInfo.CreditCard; card != nil {
			o.MaskedCardNumber = validation.MaskCardNumber(card.CardNumber)
		}
	}
	return o
}
