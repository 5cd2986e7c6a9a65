package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/orders-api/internal/product"
)

// Item is one cart row. A user holds at most one row per product.
type Item struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Line is an Item joined with its product. Product is nil and Subtotal zero
// when the product is no longer active.
type Line struct {
	Item
	Product  *product.Product `json:"product"`
	Subtotal decimal.Decimal  `json:"subtotal"`
}

type View struct {
	Items []Line          `json:"cart_items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func newLine(item Item, p *product.Product) Line {
	line := Line{Item: item, Subtotal: decimal.Zero}
	if p != nil && p.IsActive {
		line.Product = p
		line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return line
}
