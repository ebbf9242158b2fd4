package domain

import "time"

// Event types
const (
	EventTypeExpenseCreated  = "expense.created"
	EventTypeExpenseDeleted  = "expense.deleted"
	EventTypeIncomeCreated   = "income.created"
	EventTypeIncomeDeleted   = "income.deleted"
	EventTypeReceiptCreated  = "receipt.created"
	EventTypeReceiptUpdated  = "receipt.updated"
	EventTypeReceiptDeleted  = "receipt.deleted"
	EventTypeBalanceAdjusted = "balance.adjusted"
)

// Aggregate types
const (
	AggregateTypeExpense = "expense"
	AggregateTypeIncome  = "income"
	AggregateTypeReceipt = "receipt"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ReceiptCreatedEvent payload
type ReceiptCreatedEvent struct {
	ReceiptID     string `json:"receipt_id"`
	AccountID     string `json:"account_id"`
	SellerID      string `json:"seller_id"`
	TotalSum      string `json:"total_sum"`
	Currency      string `json:"currency"`
	OperationType string `json:"operation_type"`
	ReceiptDate   string `json:"receipt_date"`
}

// BalanceAdjustedEvent payload
type BalanceAdjustedEvent struct {
	AccountID   string `json:"account_id"`
	OldBalance  string `json:"old_balance"`
	NewBalance  string `json:"new_balance"`
	Currency    string `json:"currency"`
	TriggeredBy string `json:"triggered_by"`
}
