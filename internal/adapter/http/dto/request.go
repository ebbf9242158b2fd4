package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts the request to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	Kind           string          `json:"kind,omitempty"`
	Bank           string          `json:"bank,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		UserID:         userID,
		Name:           r.Name,
		Currency:       r.Currency,
		Kind:           domain.AccountKind(r.Kind),
		Bank:           r.Bank,
		OpeningBalance: r.OpeningBalance,
	}
}

// CreateExpenseRequest represents a request to create an expense.
type CreateExpenseRequest struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(userID string) usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		UserID:     userID,
		AccountID:  r.AccountID,
		Amount:     r.Amount,
		Category:   r.Category,
		OccurredAt: r.OccurredAt,
	}
}

// UpdateExpenseRequest represents a request to update an expense.
type UpdateExpenseRequest struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToUseCaseInput converts the request to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput(userID, expenseID string) usecase.UpdateExpenseInput {
	return usecase.UpdateExpenseInput{
		UserID:     userID,
		ExpenseID:  expenseID,
		AccountID:  r.AccountID,
		Amount:     r.Amount,
		Category:   r.Category,
		OccurredAt: r.OccurredAt,
	}
}

// CreateIncomeRequest represents a request to create an income.
type CreateIncomeRequest struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateIncomeRequest) ToUseCaseInput(userID string) usecase.CreateIncomeInput {
	return usecase.CreateIncomeInput{
		UserID:     userID,
		AccountID:  r.AccountID,
		Amount:     r.Amount,
		Category:   r.Category,
		OccurredAt: r.OccurredAt,
	}
}

// UpdateIncomeRequest represents a request to update an income.
type UpdateIncomeRequest struct {
	AccountID  string          `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToUseCaseInput converts the request to use case input.
func (r *UpdateIncomeRequest) ToUseCaseInput(userID, incomeID string) usecase.UpdateIncomeInput {
	return usecase.UpdateIncomeInput{
		UserID:     userID,
		IncomeID:   incomeID,
		AccountID:  r.AccountID,
		Amount:     r.Amount,
		Category:   r.Category,
		OccurredAt: r.OccurredAt,
	}
}

// ProductLineRequest represents one line item of a receipt.
type ProductLineRequest struct {
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	NDSType     int             `json:"nds_type,omitempty"`
	NDSSum      decimal.Decimal `json:"nds_sum,omitempty"`
}

func (r *ProductLineRequest) toInput() usecase.ProductLineInput {
	return usecase.ProductLineInput{
		ProductName: r.ProductName,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Amount:      r.Amount,
		NDSType:     r.NDSType,
		NDSSum:      r.NDSSum,
	}
}

// SellerRequest identifies the seller of a receipt.
type SellerRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	RetailPlace string `json:"retail_place,omitempty"`
}

func (r *SellerRequest) toInput() usecase.SellerInput {
	return usecase.SellerInput{
		Name:        r.Name,
		Address:     r.Address,
		RetailPlace: r.RetailPlace,
	}
}

// CreateReceiptRequest represents a request to create a receipt. The same
// shape is accepted by the import endpoint.
type CreateReceiptRequest struct {
	AccountID     string               `json:"account_id"`
	OperationType string               `json:"operation_type"`
	ReceiptDate   time.Time            `json:"receipt_date"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	TotalSum      decimal.Decimal      `json:"total_sum"`
	NDS10         decimal.Decimal      `json:"nds10,omitempty"`
	NDS20         decimal.Decimal      `json:"nds20,omitempty"`
	Seller        SellerRequest        `json:"seller"`
	Products      []ProductLineRequest `json:"products"`
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateReceiptRequest) ToUseCaseInput(userID string) usecase.CreateReceiptInput {
	products := make([]usecase.ProductLineInput, len(r.Products))
	for i, p := range r.Products {
		products[i] = p.toInput()
	}

	return usecase.CreateReceiptInput{
		UserID:        userID,
		AccountID:     r.AccountID,
		OperationType: domain.OperationType(r.OperationType),
		ReceiptDate:   r.ReceiptDate,
		ReceiptNumber: r.ReceiptNumber,
		TotalSum:      r.TotalSum,
		NDS10:         r.NDS10,
		NDS20:         r.NDS20,
		Manual:        true,
		Seller:        r.Seller.toInput(),
		Products:      products,
	}
}

// UpdateReceiptRequest represents a request to update a receipt. The
// product set is replaced wholesale; the operation type is not editable.
type UpdateReceiptRequest struct {
	AccountID     string               `json:"account_id"`
	ReceiptDate   time.Time            `json:"receipt_date"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	NDS10         decimal.Decimal      `json:"nds10,omitempty"`
	NDS20         decimal.Decimal      `json:"nds20,omitempty"`
	Seller        *SellerRequest       `json:"seller,omitempty"`
	Products      []ProductLineRequest `json:"products"`
}

// ToUseCaseInput converts the request to use case input.
func (r *UpdateReceiptRequest) ToUseCaseInput(userID, receiptID string) usecase.UpdateReceiptInput {
	products := make([]usecase.ProductLineInput, len(r.Products))
	for i, p := range r.Products {
		products[i] = p.toInput()
	}

	var seller *usecase.SellerInput
	if r.Seller != nil {
		s := r.Seller.toInput()
		seller = &s
	}

	return usecase.UpdateReceiptInput{
		UserID:        userID,
		ReceiptID:     receiptID,
		AccountID:     r.AccountID,
		ReceiptDate:   r.ReceiptDate,
		ReceiptNumber: r.ReceiptNumber,
		NDS10:         r.NDS10,
		NDS20:         r.NDS20,
		Seller:        seller,
		Products:      products,
	}
}
