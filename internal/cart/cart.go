package cart

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// The helpers below are pure: each returns a new cart and leaves its argument untouched.

func NewEmptyCart(id string, now time.Time) *domain.Cart {
	return &domain.Cart{
		ID:        id,
		Items:     []domain.CartItem{},
		Summary:   pricing.CartSummary(nil),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewItem(id string, product domain.Product, quantity int) domain.CartItem {
	return domain.CartItem{
		ID:         id,
		Product:    product,
		Quantity:   quantity,
		TotalPrice: pricing.ItemTotal(product, quantity),
	}
}

func withQuantity(item domain.CartItem, quantity int) domain.CartItem {
	item.Quantity = quantity
	item.TotalPrice = pricing.ItemTotal(item.Product, quantity)
	return item
}

// AddProduct merges into the existing line for the product or appends a new one.
func AddProduct(c *domain.Cart, product domain.Product, quantity int, newItemID string, now time.Time) *domain.Cart {
	out := c.Clone()
	if i := indexByProduct(out, product.ID); i >= 0 {
		out.Items[i] = withQuantity(out.Items[i], out.Items[i].Quantity+quantity)
	} else {
		out.Items = append(out.Items, NewItem(newItemID, product, quantity))
	}
	return touch(out, now)
}

// SetItemQuantity removes the line when quantity is zero.
func SetItemQuantity(c *domain.Cart, itemID string, quantity int, now time.Time) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		return RemoveItem(c, itemID, now), nil
	}

	i := indexByID(c, itemID)
	if i < 0 {
		return nil, domain.ErrItemNotFound
	}
	out := c.Clone()
	out.Items[i] = withQuantity(out.Items[i], quantity)
	return touch(out, now), nil
}

// RemoveItem filters the line out; an unknown id leaves the items as they were.
func RemoveItem(c *domain.Cart, itemID string, now time.Time) *domain.Cart {
	out := c.Clone()
	items := make([]domain.CartItem, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	out.Items = items
	return touch(out, now)
}

func IsEmpty(c *domain.Cart) bool {
	return c == nil || len(c.Items) == 0
}

func indexByID(c *domain.Cart, itemID string) int {
	if c == nil {
		return -1
	}
	for i, item := range c.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func indexByProduct(c *domain.Cart, productID string) int {
	if c == nil {
		return -1
	}
	for i, item := range c.Items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func touch(c *domain.Cart, now time.Time) *domain.Cart {
	c.Summary = pricing.CartSummary(c.Items)
	c.UpdatedAt = now
	return c
}
