package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Deleting a product only clears IsActive so
// historical order lines keep pointing at it.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Filter narrows the public listing. Empty fields match everything.
type Filter struct {
	Category string
	Search   string
}

// SampleProducts is the demo catalog loaded when SEED_SAMPLE_DATA is set.
var SampleProducts = []Product{
	{Name: "Laptop", Description: "High-performance laptop", Price: decimal.RequireFromString("999.99"), StockQuantity: 50, Category: "Electronics"},
	{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse", Price: decimal.RequireFromString("29.99"), StockQuantity: 200, Category: "Accessories"},
	{Name: "Mechanical Keyboard", Description: "RGB mechanical keyboard", Price: decimal.RequireFromString("89.99"), StockQuantity: 100, Category: "Accessories"},
	{Name: "USB-C Hub", Description: "7-in-1 USB-C hub", Price: decimal.RequireFromString("49.99"), StockQuantity: 150, Category: "Accessories"},
	{Name: "Webcam HD", Description: "1080p HD webcam", Price: decimal.RequireFromString("79.99"), StockQuantity: 75, Category: "Electronics"},
	{Name: "Desk Lamp", Description: "LED desk lamp with adjustable brightness", Price: decimal.RequireFromString("34.99"), StockQuantity: 120, Category: "Office"},
}
