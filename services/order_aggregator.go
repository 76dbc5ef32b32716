package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harekrishna1602/anvesha-2.0/models"
)

// PriceSource resolves the current unit price of a product
type PriceSource interface {
	PriceOf(productID uuid.UUID) (decimal.Decimal, error)
}

// PriceList is a PriceSource backed by an in-memory snapshot of products
type PriceList map[uuid.UUID]decimal.Decimal

// NewPriceList snapshots the current price of each product
func NewPriceList(products []models.Product) PriceList {
	prices := make(PriceList, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	return prices
}

func (p PriceList) PriceOf(productID uuid.UUID) (decimal.Decimal, error) {
	price, ok := p[productID]
	if !ok {
		return decimal.Zero, invalid("product_id", "product %s not found", productID)
	}
	return price, nil
}

// OrderLine is a pending order line held by the aggregator
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity x unit price
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderAggregator accumulates order lines before submission. It holds at most
// one line per product; adding a product again increases its quantity and keeps
// the unit price captured by the first add.
type OrderAggregator struct {
	prices PriceSource
	lines  []OrderLine
}

func NewOrderAggregator(prices PriceSource) *OrderAggregator {
	return &OrderAggregator{prices: prices}
}

// AddLine adds quantity units of a product, merging with an existing line
func (a *OrderAggregator) AddLine(productID uuid.UUID, quantity int) error {
	if productID == uuid.Nil {
		return invalid("product_id", "a product must be selected")
	}
	if quantity <= 0 {
		return invalid("quantity", "quantity must be greater than zero")
	}

	for i := range a.lines {
		if a.lines[i].ProductID == productID {
			a.lines[i].Quantity += quantity
			return nil
		}
	}

	price, err := a.prices.PriceOf(productID)
	if err != nil {
		return err
	}
	a.lines = append(a.lines, OrderLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: price,
	})
	return nil
}

// RemoveLine drops the line for productID if present
func (a *OrderAggregator) RemoveLine(productID uuid.UUID) {
	for i := range a.lines {
		if a.lines[i].ProductID == productID {
			a.lines = append(a.lines[:i], a.lines[i+1:]...)
			return
		}
	}
}

// Total returns the sum of every line's subtotal
func (a *OrderAggregator) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines in insertion order
func (a *OrderAggregator) Lines() []OrderLine {
	out := make([]OrderLine, len(a.lines))
	copy(out, a.lines)
	return out
}

func (a *OrderAggregator) Len() int {
	return len(a.lines)
}

// ToInsertPayload converts the lines into order items referencing orderID
func (a *OrderAggregator) ToInsertPayload(orderID uuid.UUID) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(a.lines))
	for _, l := range a.lines {
		items = append(items, models.OrderItem{
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return items
}
