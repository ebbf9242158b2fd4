package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
)

func TestCreateReceiptRequest_ToUseCaseInput(t *testing.T) {
	date := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	req := CreateReceiptRequest{
		AccountID:     "acc-1",
		OperationType: "purchase",
		ReceiptDate:   date,
		ReceiptNumber: "FD-100500",
		TotalSum:      decimal.RequireFromString("849.90"),
		NDS20:         decimal.RequireFromString("141.65"),
		Seller: SellerRequest{
			Name:        "Grocery LLC",
			Address:     "Main st 1",
			RetailPlace: "Store #3",
		},
		Products: []ProductLineRequest{
			{
				ProductName: "Milk",
				Price:       decimal.RequireFromString("89.90"),
				Quantity:    decimal.NewFromInt(2),
				Amount:      decimal.RequireFromString("179.80"),
			},
			{
				ProductName: "Cheese",
				Price:       decimal.RequireFromString("670.10"),
				Quantity:    decimal.NewFromInt(1),
				Amount:      decimal.RequireFromString("670.10"),
				NDSType:     2,
				NDSSum:      decimal.RequireFromString("111.68"),
			},
		},
	}

	input := req.ToUseCaseInput("u1")

	if input.UserID != "u1" {
		t.Fatalf("expected user ID to come from the caller, got %q", input.UserID)
	}

	if input.OperationType != domain.OperationPurchase {
		t.Fatalf("expected purchase operation, got %q", input.OperationType)
	}

	if !input.Manual {
		t.Fatalf("expected API-created receipts to be marked manual")
	}

	if input.Seller.Name != "Grocery LLC" || input.Seller.RetailPlace != "Store #3" {
		t.Fatalf("unexpected seller mapping: %+v", input.Seller)
	}

	if len(input.Products) != 2 {
		t.Fatalf("expected 2 product lines, got %d", len(input.Products))
	}

	if input.Products[1].NDSType != 2 || !input.Products[1].NDSSum.Equal(decimal.RequireFromString("111.68")) {
		t.Fatalf("unexpected NDS mapping: %+v", input.Products[1])
	}

	if !input.TotalSum.Equal(decimal.RequireFromString("849.90")) || !input.ReceiptDate.Equal(date) {
		t.Fatalf("unexpected totals mapping: sum=%s date=%s", input.TotalSum, input.ReceiptDate)
	}
}

func TestUpdateReceiptRequest_ToUseCaseInput(t *testing.T) {
	req := UpdateReceiptRequest{
		AccountID:   "acc-2",
		ReceiptDate: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
		Products: []ProductLineRequest{
			{ProductName: "Bread", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1), Amount: decimal.NewFromInt(50)},
		},
	}

	input := req.ToUseCaseInput("u1", "rcp-1")

	if input.UserID != "u1" || input.ReceiptID != "rcp-1" {
		t.Fatalf("expected identity fields from the caller, got user=%q receipt=%q", input.UserID, input.ReceiptID)
	}

	if input.Seller != nil {
		t.Fatalf("expected nil seller when omitted, got %+v", input.Seller)
	}

	if len(input.Products) != 1 || input.Products[0].ProductName != "Bread" {
		t.Fatalf("unexpected product mapping: %+v", input.Products)
	}
}

func TestUpdateReceiptRequest_MapsSellerWhenPresent(t *testing.T) {
	req := UpdateReceiptRequest{
		AccountID: "acc-2",
		Seller:    &SellerRequest{Name: "New Seller"},
	}

	input := req.ToUseCaseInput("u1", "rcp-1")

	if input.Seller == nil || input.Seller.Name != "New Seller" {
		t.Fatalf("expected seller to be mapped, got %+v", input.Seller)
	}
}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := CreateAccountRequest{
		Name:           "Salary card",
		Currency:       "RUB",
		Kind:           "debit",
		Bank:           "Alfa",
		OpeningBalance: decimal.RequireFromString("1500.00"),
	}

	input := req.ToUseCaseInput("u1")

	if input.UserID != "u1" || input.Name != "Salary card" {
		t.Fatalf("unexpected account mapping: %+v", input)
	}

	if input.Kind != domain.AccountKindDebit {
		t.Fatalf("expected debit kind, got %q", input.Kind)
	}

	if !input.OpeningBalance.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("expected opening balance to survive, got %s", input.OpeningBalance)
	}
}
