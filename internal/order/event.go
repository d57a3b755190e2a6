package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	OrderPlacedTopic = "order-placed"
	EventOrderPlaced = "order_placed"
)

// OrderPlacedEvent is the payload published for every new order. Other replicas use the
// session id to drop the cart they still hold.
type OrderPlacedEvent struct {
	OrderID     string    `json:"order_id"`
	SessionID   string    `json:"session_id"`
	CartID      string    `json:"cart_id"`
	ItemCount   int       `json:"item_count"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	PlacedAt    time.Time `json:"placed_at"`
}

func newOrderPlacedEvent(o *domain.Order) OrderPlacedEvent {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderPlacedEvent{
		OrderID:     o.ID,
		SessionID:   o.SessionID,
		CartID:      o.CartID,
		ItemCount:   count,
		TotalAmount: o.Summary.Total.Amount,
		Currency:    o.Summary.Total.CurrencyCode,
		PlacedAt:    o.CreatedAt,
	}
}

func marshalOrderPlaced(o *domain.Order) ([]byte, error) {
	payload, err := json.Marshal(newOrderPlacedEvent(o))
	if err != nil {
		return nil, fmt.Errorf("marshal order placed event: %w", err)
	}
	return payload, nil
}
