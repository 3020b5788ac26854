package app

import (
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
)

func TestRunDemoScenario(t *testing.T) {
	logger := log.WithField("component", "test")
	deps := NewDependencies(logger)
	orderWorkflow := createWorkflow(deps, nil)
	cartService := cart.NewService(deps.Carts, deps.Products, deps.Ledger, logger)

	if err := runDemoScenario(cartService, orderWorkflow, deps, logger); err != nil {
		t.Fatalf("demo scenario failed: %v", err)
	}

	// Полный цикл закончился доставкой.
	delivered, err := deps.Orders.ListByCustomer("demo-alice", 1)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(delivered) != 1 || delivered[0].Status != domain.OrderStatusDelivered {
		t.Fatalf("expected delivered order, got %+v", delivered)
	}

	// Отмена вернула сток по кофе.
	available, err := deps.Ledger.AvailableQuantity("coffee-beans-1kg")
	if err != nil {
		t.Fatalf("available quantity: %v", err)
	}
	if available != 25 {
		t.Fatalf("expected coffee stock restored to 25, got %d", available)
	}

	// Возврат средств зафиксирован.
	refunded, err := deps.Orders.ListByCustomer("demo-carol", 1)
	if err != nil {
		t.Fatalf("list refunded orders: %v", err)
	}
	if len(refunded) != 1 || refunded[0].PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("expected refunded order, got %+v", refunded)
	}

	// Корзины после checkout опустели.
	aliceCart, err := deps.Carts.Get("demo-alice")
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("get cart: %v", err)
	}
	if err == nil && !aliceCart.IsEmpty() {
		t.Fatal("expected cart to be empty after checkout")
	}
}
