package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Kind      string          `json:"kind"`
	Bank      string          `json:"bank,omitempty"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Kind:      string(a.Kind),
		Bank:      a.Bank,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:         e.ID,
		AccountID:  e.AccountID,
		Amount:     e.Amount,
		Category:   e.Category,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// IncomeResponse represents an income in API responses.
type IncomeResponse struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IncomeFromDomain converts a domain income to a response.
func IncomeFromDomain(i *domain.Income) *IncomeResponse {
	return &IncomeResponse{
		ID:         i.ID,
		AccountID:  i.AccountID,
		Amount:     i.Amount,
		Category:   i.Category,
		OccurredAt: i.OccurredAt,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// IncomesFromDomain converts domain incomes to responses.
func IncomesFromDomain(incomes []*domain.Income) []*IncomeResponse {
	result := make([]*IncomeResponse, len(incomes))
	for i, in := range incomes {
		result[i] = IncomeFromDomain(in)
	}
	return result
}

// ProductResponse represents a receipt line item in API responses.
type ProductResponse struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	NDSType     int             `json:"nds_type,omitempty"`
	NDSSum      decimal.Decimal `json:"nds_sum,omitempty"`
}

// ReceiptResponse represents a receipt in API responses.
type ReceiptResponse struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	SellerID      string             `json:"seller_id,omitempty"`
	TotalSum      decimal.Decimal    `json:"total_sum"`
	OperationType string             `json:"operation_type"`
	ReceiptDate   time.Time          `json:"receipt_date"`
	ReceiptNumber string             `json:"receipt_number,omitempty"`
	NDS10         decimal.Decimal    `json:"nds10,omitempty"`
	NDS20         decimal.Decimal    `json:"nds20,omitempty"`
	Manual        bool               `json:"manual"`
	Products      []*ProductResponse `json:"products,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ReceiptFromDomain converts a domain receipt to a response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	products := make([]*ProductResponse, len(r.Products))
	for i, p := range r.Products {
		products[i] = &ProductResponse{
			ID:          p.ID,
			ProductName: p.ProductName,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Amount:      p.Amount,
			NDSType:     p.NDSType,
			NDSSum:      p.NDSSum,
		}
	}

	return &ReceiptResponse{
		ID:            r.ID,
		AccountID:     r.AccountID,
		SellerID:      r.SellerID,
		TotalSum:      r.TotalSum,
		OperationType: string(r.OperationType),
		ReceiptDate:   r.ReceiptDate,
		ReceiptNumber: r.ReceiptNumber,
		NDS10:         r.NDS10,
		NDS20:         r.NDS20,
		Manual:        r.Manual,
		Products:      products,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ReceiptsFromDomain converts domain receipts to responses.
func ReceiptsFromDomain(receipts []*domain.Receipt) []*ReceiptResponse {
	result := make([]*ReceiptResponse, len(receipts))
	for i, r := range receipts {
		result[i] = ReceiptFromDomain(r)
	}
	return result
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// IntegrityResultResponse represents one account's integrity check result.
type IntegrityResultResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Consistent        bool            `json:"consistent"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// IntegrityResultFromUseCase converts an integrity result to a response.
func IntegrityResultFromUseCase(r *usecase.IntegrityResult) *IntegrityResultResponse {
	return &IntegrityResultResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		Consistent:        r.Consistent,
		CheckedAt:         r.CheckedAt,
	}
}

// IntegrityReportResponse represents a full drift report.
type IntegrityReportResponse struct {
	TotalAccounts      int                        `json:"total_accounts"`
	ConsistentAccounts int                        `json:"consistent_accounts"`
	Drifted            []*IntegrityResultResponse `json:"drifted"`
	CheckedAt          time.Time                  `json:"checked_at"`
}

// IntegrityReportFromUseCase converts an integrity report to a response.
func IntegrityReportFromUseCase(r *usecase.IntegrityReport) *IntegrityReportResponse {
	drifted := make([]*IntegrityResultResponse, len(r.Drifted))
	for i, d := range r.Drifted {
		drifted[i] = IntegrityResultFromUseCase(d)
	}

	return &IntegrityReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ConsistentAccounts: r.ConsistentAccounts,
		Drifted:            drifted,
		CheckedAt:          r.CheckedAt,
	}
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
