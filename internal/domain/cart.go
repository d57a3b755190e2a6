package domain

import "time"

type CartItem struct {
	ID         string  `json:"id" bson:"id"`
	Product    Product `json:"product" bson:"product"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	TotalPrice Price   `json:"totalPrice" bson:"total_price"`
}

type CartSummary struct {
	Subtotal  Price `json:"subtotal" bson:"subtotal"`
	Tax       Price `json:"tax" bson:"tax"`
	Total     Price `json:"total" bson:"total"`
	ItemCount int   `json:"itemCount" bson:"item_count"`
}

// Cart keeps items in insertion order. Summary is always derived from Items.
type Cart struct {
	ID        string      `json:"id" bson:"id"`
	Items     []CartItem  `json:"items" bson:"items"`
	Summary   CartSummary `json:"summary" bson:"summary"`
	CreatedAt time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a deep copy so reducers never share item slices between states.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

// StorageSnapshot is the persisted shape of a cart: timestamp is epoch millis.
type StorageSnapshot struct {
	Cart      *Cart `json:"cart" bson:"cart"`
	Timestamp int64 `json:"timestamp" bson:"timestamp"`
}
