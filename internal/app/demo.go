package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
)

// runDemoScenario наполняет каталог и прогоняет полный жизненный цикл заказа:
// корзина → checkout → оплата → отгрузка → доставка, плюс отмена и возврат.
// Используется для локальной разработки и smoke-проверки сборки.
func runDemoScenario(
	carts *cart.Service,
	orders *workflow.Workflow,
	deps *Dependencies,
	logger *log.Entry,
) error {
	logger = logger.WithField("component", "demo")

	catalog := []struct {
		product domain.Product
		stock   int32
	}{
		{domain.Product{ID: "laptop-pro-15", SKU: "LAP-015", Name: "Laptop Pro 15", Category: "electronics", PriceMinor: 129900, Active: true}, 10},
		{domain.Product{ID: "wireless-mouse", SKU: "MOU-001", Name: "Wireless Mouse", Category: "electronics", PriceMinor: 2950, Active: true}, 50},
		{domain.Product{ID: "coffee-beans-1kg", SKU: "COF-100", Name: "Coffee Beans 1kg", Category: "grocery", PriceMinor: 1800, Active: true}, 25},
	}
	for _, entry := range catalog {
		if err := deps.Products.Put(entry.product); err != nil {
			return fmt.Errorf("seed product %s: %w", entry.product.ID, err)
		}
		if err := deps.Ledger.AddStock(entry.product.ID, entry.stock); err != nil {
			return fmt.Errorf("seed stock %s: %w", entry.product.ID, err)
		}
	}
	logger.WithField("products", len(catalog)).Info("catalog seeded")

	cardInfo := domain.PaymentInfo{
		payment.InfoCardNumber: "4111111111111111",
		payment.InfoCardExpiry: "12/27",
		payment.InfoCardCVV:    "123",
	}

	// Полный успешный цикл.
	if _, err := carts.AddItem("demo-alice", "laptop-pro-15", 1); err != nil {
		return fmt.Errorf("add laptop to cart: %w", err)
	}
	if _, err := carts.AddItem("demo-alice", "wireless-mouse", 2); err != nil {
		return fmt.Errorf("add mouse to cart: %w", err)
	}

	order, err := orders.CreateOrder("demo-alice", "221B Baker Street, London")
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	logger.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.TotalMinor(),
	}).Info("order created")

	if order, err = orders.SetShippingCost(order.ID, 999); err != nil {
		return fmt.Errorf("set shipping cost: %w", err)
	}
	if order, err = orders.Pay(order.ID, domain.PaymentMethodCreditCard, cardInfo); err != nil {
		return fmt.Errorf("pay: %w", err)
	}
	if order, err = orders.Ship(order.ID, "TRACK-DEMO-001"); err != nil {
		return fmt.Errorf("ship: %w", err)
	}
	if order, err = orders.Deliver(order.ID); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	logger.WithField("order_id", order.ID).Info("order delivered")

	// Отмена до оплаты: сток возвращается.
	if _, err := carts.AddItem("demo-bob", "coffee-beans-1kg", 3); err != nil {
		return fmt.Errorf("add coffee to cart: %w", err)
	}
	canceled, err := orders.CreateOrder("demo-bob", "742 Evergreen Terrace")
	if err != nil {
		return fmt.Errorf("checkout for cancel: %w", err)
	}
	if _, err := orders.Cancel(canceled.ID, "customer changed mind"); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	logger.WithField("order_id", canceled.ID).Info("order canceled, stock restored")

	// Оплата и возврат средств.
	if _, err := carts.AddItem("demo-carol", "wireless-mouse", 1); err != nil {
		return fmt.Errorf("add mouse for refund demo: %w", err)
	}
	refundable, err := orders.CreateOrder("demo-carol", "4 Privet Drive")
	if err != nil {
		return fmt.Errorf("checkout for refund: %w", err)
	}
	if _, err := orders.Pay(refundable.ID, domain.PaymentMethodCreditCard, cardInfo); err != nil {
		return fmt.Errorf("pay for refund demo: %w", err)
	}
	if _, err := orders.Refund(refundable.ID, cardInfo); err != nil {
		return fmt.Errorf("refund: %w", err)
	}
	logger.WithField("order_id", refundable.ID).Info("order refunded")

	timeline, err := orders.Timeline(order.ID)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	for _, event := range timeline {
		logger.WithFields(log.Fields{
			"order_id": event.OrderID,
			"type":     event.Type,
			"occurred": event.Occurred,
		}).Info("timeline event")
	}

	return nil
}
