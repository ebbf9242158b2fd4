package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the kind of purchase event a receipt records.
type OperationType string

const (
	OperationPurchase       OperationType = "purchase"
	OperationPurchaseRefund OperationType = "purchase_refund"
	OperationSale           OperationType = "sale"
	OperationSaleRefund     OperationType = "sale_refund"
)

var validOperationTypes = map[OperationType]bool{
	OperationPurchase:       true,
	OperationPurchaseRefund: true,
	OperationSale:           true,
	OperationSaleRefund:     true,
}

// IsValid checks if the operation type is known.
func (t OperationType) IsValid() bool {
	return validOperationTypes[t]
}

// EffectKind returns the balance direction of this operation type.
// Purchases and sale refunds take money out of the account, purchase
// refunds and sales bring money in.
func (t OperationType) EffectKind() EffectKind {
	switch t {
	case OperationPurchaseRefund, OperationSale:
		return EffectCredit
	default:
		return EffectDebit
	}
}

// Receipt is the aggregate root for a purchase event: the receipt row, its
// product lines and the seller move together in one transaction.
type Receipt struct {
	ID            string
	UserID        string
	AccountID     string
	SellerID      string
	TotalSum      decimal.Decimal
	OperationType OperationType
	ReceiptDate   time.Time
	ReceiptNumber string
	NDS10         decimal.Decimal
	NDS20         decimal.Decimal
	Manual        bool
	Products      []*Product
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Effect returns the balance effect this receipt applies at creation time.
func (r *Receipt) Effect() BalanceEffect {
	return BalanceEffect{
		Kind:      r.OperationType.EffectKind(),
		AccountID: r.AccountID,
		Amount:    r.TotalSum,
	}
}

// Validate validates the receipt before persisting.
func (r *Receipt) Validate() error {
	if r.AccountID == "" {
		return ErrMissingAccount
	}

	if !r.OperationType.IsValid() {
		return ErrInvalidEffectKind
	}

	if r.TotalSum.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}

// ProductTotal sums the product line amounts.
func (r *Receipt) ProductTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Products {
		total = total.Add(p.Amount)
	}

	return total
}

// Product is a receipt line item. Products are owned by exactly one receipt
// and are replaced wholesale on receipt update, never mutated in place.
type Product struct {
	ID          string
	ReceiptID   string
	ProductName string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	NDSType     int
	NDSSum      decimal.Decimal
	CreatedAt   time.Time
}

// Validate checks the line item is consistent. Amount must equal
// price * quantity, the schema does not enforce it.
func (p *Product) Validate() error {
	if p.Price.IsNegative() || p.Quantity.IsNegative() || p.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}

// Seller is a merchant the user bought from, unique per (user, name).
type Seller struct {
	ID          string
	UserID      string
	Name        string
	Address     string
	RetailPlace string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
