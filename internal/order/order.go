package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether a customer may still cancel the order.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

const DefaultPaymentMethod = "credit_card"

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []Item          `json:"items,omitempty"`
	Payment         *Payment        `json:"payment"`
}

// Item is an order line. PriceAtPurchase is the unit price captured at
// checkout and never changes afterwards.
type Item struct {
	ID              int             `json:"id"`
	OrderID         int             `json:"order_id"`
	ProductID       int             `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Payment struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"payment_method"`
	Status        PaymentStatus   `json:"payment_status"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Summary holds the aggregate figures shown on the admin dashboard.
type Summary struct {
	TotalOrders   int
	PendingOrders int
	Revenue       decimal.Decimal
}

// RevenueStatuses are the states whose totals count as revenue.
var RevenueStatuses = []Status{StatusProcessing, StatusShipped, StatusDelivered}

func newItem(orderID, productID, quantity int, price decimal.Decimal) Item {
	return Item{
		OrderID:         orderID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: price,
		Subtotal:        price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
