package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry. Price is per unit.
type Item struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	OwnerID         string
	Name            string
	Price           decimal.Decimal
	QuantityInStock int
}

// CanCover reports whether the item has at least qty units in stock.
func (i *Item) CanCover(qty int) bool {
	return i.QuantityInStock >= qty
}

// Discount is a seller-defined bulk rule: a line whose scope reaches MinQuantity
// gets PercentageOff taken off its price.
type Discount struct {
	CreatedAt     time.Time
	ID            string
	OwnerID       string
	PercentageOff decimal.Decimal
	MinQuantity   int
}
