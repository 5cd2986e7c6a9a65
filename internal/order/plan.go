package order

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/cart"
	"github.com/wichananm65/orders-api/internal/product"
)

var (
	ErrCartEmpty          = apperror.NewBadRequest("Cart is empty")
	ErrProductUnavailable = apperror.NewBadRequest("Product not available")
	ErrInsufficientStock  = apperror.NewBadRequest("Insufficient stock")
)

// PlannedLine is one order line to be written at checkout.
type PlannedLine struct {
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// Plan is a validated checkout: the lines to write, the order total, and
// the quantity to take from each product.
type Plan struct {
	Lines    []PlannedLine
	Total    decimal.Decimal
	Consumed map[int]int
}

// ProductIDs returns the consumed product ids in ascending order, the order
// in which stock rows are locked and updated.
func (p Plan) ProductIDs() []int {
	return sortedKeys(p.Consumed)
}

// PlanCheckout validates every cart line against the current catalog before
// anything is written. products must contain every product referenced by
// items that still exists.
func PlanCheckout(items []cart.Item, products map[int]product.Product) (Plan, error) {
	if len(items) == 0 {
		return Plan{}, ErrCartEmpty
	}

	plan := Plan{
		Lines:    make([]PlannedLine, 0, len(items)),
		Total:    decimal.Zero,
		Consumed: make(map[int]int, len(items)),
	}
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok || !p.IsActive {
			return Plan{}, &apperror.Error{
				Kind:    apperror.BadRequest,
				Message: fmt.Sprintf("Product %d not available", item.ProductID),
				Err:     ErrProductUnavailable,
			}
		}
		plan.Consumed[p.ID] += item.Quantity
		if p.StockQuantity < plan.Consumed[p.ID] {
			return Plan{}, &apperror.Error{
				Kind:    apperror.BadRequest,
				Message: fmt.Sprintf("Insufficient stock for %s", p.Name),
				Err:     ErrInsufficientStock,
			}
		}

		plan.Lines = append(plan.Lines, PlannedLine{ProductID: p.ID, Quantity: item.Quantity, Price: p.Price})
		plan.Total = plan.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return plan, nil
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
