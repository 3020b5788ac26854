package domain

import (
	"testing"
	"time"
)

func validOrder() Order {
	now := time.Now().UTC()
	return Order{
		ID:            "order-1",
		CustomerID:    "customer-1",
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusPending,
		Currency:      "USD",
		Lines: []OrderLine{
			{ID: "line-1", ProductID: "prod-1", SKU: "sku-1", Qty: 3, UnitPriceMinor: 100, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrder_ValidateInvariants_OK(t *testing.T) {
	order := validOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestOrder_ValidateInvariants_Missing(t *testing.T) {
	order := Order{}
	errs := order.ValidateInvariants()
	if len(errs) == 0 {
		t.Fatal("expected validation errors for empty order")
	}

	want := map[error]bool{
		ErrCustomerRequired: false,
		ErrCurrencyRequired: false,
		ErrItemsRequired:    false,
	}
	for _, err := range errs {
		if _, ok := want[err]; ok {
			want[err] = true
		}
	}
	for err, seen := range want {
		if !seen {
			t.Fatalf("expected error %v in %v", err, errs)
		}
	}
}

func TestOrder_ValidateInvariants_BadLine(t *testing.T) {
	order := validOrder()
	order.Lines[0].Qty = 0
	order.Lines[0].UnitPriceMinor = -1

	errs := order.ValidateInvariants()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
}

func TestOrder_Totals(t *testing.T) {
	order := validOrder()
	order.Lines = append(order.Lines, OrderLine{
		ID: "line-2", ProductID: "prod-2", SKU: "sku-2", Qty: 2, UnitPriceMinor: 250,
	})
	order.ShippingCostMinor = 99

	if got := order.SubtotalMinor(); got != 3*100+2*250 {
		t.Fatalf("subtotal = %d, want %d", got, 3*100+2*250)
	}
	if got := order.TotalMinor(); got != 3*100+2*250+99 {
		t.Fatalf("total = %d, want %d", got, 3*100+2*250+99)
	}
}

func TestOrder_CanCancel(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCanceled, false},
	}

	for _, tc := range cases {
		order := validOrder()
		order.Status = tc.status
		if got := order.CanCancel(); got != tc.want {
			t.Fatalf("CanCancel from %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}
