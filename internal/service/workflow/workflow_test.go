package workflow_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type fixture struct {
	workflow *workflow.Workflow
	orders   domain.OrderRepository
	carts    domain.CartRepository
	products domain.ProductRepository
	ledger   *stock.Ledger
	gateway  *payment.Gateway
	mock     *payment.MockProcessor
	timeline domain.TimelineRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orders := memory.NewOrderRepository()
	carts := memory.NewCartRepository()
	products := memory.NewProductRepository()
	ledger := stock.NewLedger(nil)
	outbox := memory.NewOutboxRepository()
	timeline := memory.NewTimelineRepository()

	mock := &payment.MockProcessor{}
	gateway := payment.NewGateway(nil)
	gateway.Register(domain.PaymentMethodCreditCard, mock)

	return &fixture{
		workflow: workflow.NewWorkflowWithoutMetrics(orders, carts, products, ledger, gateway, outbox, timeline, nil),
		orders:   orders,
		carts:    carts,
		products: products,
		ledger:   ledger,
		gateway:  gateway,
		mock:     mock,
		timeline: timeline,
	}
}

func (f *fixture) seedProduct(t *testing.T, id string, priceMinor int64, available int32) {
	t.Helper()

	product := domain.Product{
		ID:         id,
		SKU:        "sku-" + id,
		Name:       "Product " + id,
		Category:   "test",
		PriceMinor: priceMinor,
		Active:     true,
	}
	if err := f.products.Put(product); err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	if err := f.ledger.AddStock(id, available); err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}
}

func (f *fixture) seedCart(t *testing.T, customerID string, items map[string]int32) {
	t.Helper()

	cart := domain.NewCart(customerID)
	for productID, qty := range items {
		cart.Upsert(productID, qty)
	}
	if err := f.carts.Save(cart); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}
}

func (f *fixture) available(t *testing.T, productID string) int32 {
	t.Helper()

	qty, err := f.ledger.AvailableQuantity(productID)
	if err != nil {
		t.Fatalf("available quantity failed: %v", err)
	}
	return qty
}

func TestWorkflow_CreateOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedProduct(t, "product-2", 500, 5)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2, "product-2": 3})

	order, err := f.workflow.CreateOrder("customer-1", "12 Main St")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", order.PaymentStatus)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if order.TotalMinor() != 2*1000+3*500 {
		t.Fatalf("unexpected total: %d", order.TotalMinor())
	}

	// Позиции отсортированы по product_id.
	if order.Lines[0].ProductID != "product-1" || order.Lines[1].ProductID != "product-2" {
		t.Fatalf("unexpected line order: %s, %s", order.Lines[0].ProductID, order.Lines[1].ProductID)
	}

	if got := f.available(t, "product-1"); got != 8 {
		t.Fatalf("expected 8 units left, got %d", got)
	}
	if got := f.available(t, "product-2"); got != 2 {
		t.Fatalf("expected 2 units left, got %d", got)
	}

	// Корзина очищена.
	cart, err := f.carts.Get("customer-1")
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected cart to be cleared after checkout")
	}
}

func TestWorkflow_CreateOrderFreezesPrice(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 1})

	order, err := f.workflow.CreateOrder("customer-1", "12 Main St")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// Цена каталога меняется после оформления; заказ хранит снапшот.
	product, err := f.products.Get("product-1")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	product.PriceMinor = 9999
	if err := f.products.Put(product); err != nil {
		t.Fatalf("put product failed: %v", err)
	}

	stored, err := f.workflow.Get(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if stored.Lines[0].UnitPriceMinor != 1000 {
		t.Fatalf("expected frozen price 1000, got %d", stored.Lines[0].UnitPriceMinor)
	}
	if stored.TotalMinor() != 1000 {
		t.Fatalf("expected total 1000, got %d", stored.TotalMinor())
	}
}

func TestWorkflow_CreateOrderEmptyCart(t *testing.T) {
	f := newFixture(t)

	if _, err := f.workflow.CreateOrder("customer-1", ""); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestWorkflow_CreateOrderRollbackOnShortage(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedProduct(t, "product-2", 500, 1)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2, "product-2": 5})

	_, err := f.workflow.CreateOrder("customer-1", "")
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	// Частично занятый резерв откачен полностью.
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected product-1 stock restored to 10, got %d", got)
	}
	if got := f.available(t, "product-2"); got != 1 {
		t.Fatalf("expected product-2 stock untouched, got %d", got)
	}

	// Корзина сохранена для повторной попытки.
	cart, cartErr := f.carts.Get("customer-1")
	if cartErr != nil {
		t.Fatalf("get cart failed: %v", cartErr)
	}
	if cart.IsEmpty() {
		t.Fatal("expected cart to survive failed checkout")
	}
}

func TestWorkflow_ConcurrentCheckoutLastUnits(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 1)

	const customers = 8
	for i := 0; i < customers; i++ {
		f.seedCart(t, customerID(i), map[string]int32{"product-1": 1})
	}

	var wg sync.WaitGroup
	results := make([]error, customers)
	for i := 0; i < customers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = f.workflow.CreateOrder(customerID(idx), "")
		}(i)
	}
	wg.Wait()

	var succeeded, shortages int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case domain.IsInsufficientStock(err):
			shortages++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful checkout, got %d", succeeded)
	}
	if shortages != customers-1 {
		t.Fatalf("expected %d shortages, got %d", customers-1, shortages)
	}
	if got := f.available(t, "product-1"); got != 0 {
		t.Fatalf("expected 0 units left, got %d", got)
	}
}

func TestWorkflow_PaySuccess(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	paid, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if paid.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", paid.Status)
	}
	if paid.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", paid.PaymentStatus)
	}
	if paid.PaymentMethod != domain.PaymentMethodCreditCard {
		t.Fatalf("expected credit_card method, got %s", paid.PaymentMethod)
	}
	if len(f.mock.ChargeCalls) != 1 || f.mock.ChargeCalls[0] != 2000 {
		t.Fatalf("unexpected charge calls: %v", f.mock.ChargeCalls)
	}

	// Успешная оплата стока не трогает.
	if got := f.available(t, "product-1"); got != 8 {
		t.Fatalf("expected 8 units left, got %d", got)
	}
}

func TestWorkflow_PayDeclined(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	f.mock.ChargeErr = &domain.PaymentError{Method: domain.PaymentMethodCreditCard, Reason: "card declined"}

	declined, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{})
	if !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if declined.Status != domain.OrderStatusPending {
		t.Fatalf("expected order to stay pending, got %s", declined.Status)
	}
	if declined.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("expected failed payment, got %s", declined.PaymentStatus)
	}

	// Сток остаётся зарезервированным: ожидается retry оплаты.
	if got := f.available(t, "product-1"); got != 8 {
		t.Fatalf("expected stock to stay reserved, got %d", got)
	}

	// Повторная попытка после decline проходит.
	f.mock.ChargeErr = nil
	retried, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{})
	if err != nil {
		t.Fatalf("retry pay failed: %v", err)
	}
	if retried.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected confirmed after retry, got %s", retried.Status)
	}
}

func TestWorkflow_PayUnknownMethod(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 1})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	_, err = f.workflow.Pay(order.ID, domain.PaymentMethodWallet, domain.PaymentInfo{})
	if !domain.IsConfigurationError(err) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	// Ошибка конфигурации не трогает состояние заказа.
	stored, getErr := f.workflow.Get(order.ID)
	if getErr != nil {
		t.Fatalf("get failed: %v", getErr)
	}
	if stored.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", stored.PaymentStatus)
	}
}

func TestWorkflow_PayConfirmedOrderRejected(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 1})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	_, err = f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{})
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if len(f.mock.ChargeCalls) != 1 {
		t.Fatalf("expected single charge, got %d", len(f.mock.ChargeCalls))
	}
}

func TestWorkflow_CancelPendingRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 4})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if got := f.available(t, "product-1"); got != 6 {
		t.Fatalf("expected 6 units left, got %d", got)
	}

	canceled, err := f.workflow.Cancel(order.ID, "changed my mind")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != domain.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}
}

func TestWorkflow_CancelIsIdempotentGuarded(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 4})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Cancel(order.ID, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Второй Cancel отклоняется guard'ом и не трогает сток.
	_, err = f.workflow.Cancel(order.ID, "")
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock released exactly once, got %d", got)
	}
}

func TestWorkflow_ConcurrentCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 4})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = f.workflow.Cancel(order.ID, "")
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !domain.IsInvalidTransition(err) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful cancel, got %d", succeeded)
	}
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock restored exactly once, got %d", got)
	}
}

func TestWorkflow_CancelConfirmedOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	canceled, err := f.workflow.Cancel(order.ID, "")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != domain.OrderStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	// Оплата остаётся completed: возврат средств — отдельная операция.
	if canceled.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", canceled.PaymentStatus)
	}
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock restored, got %d", got)
	}
}

func TestWorkflow_CancelShippedRejected(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.workflow.Ship(order.ID, "TRACK-1"); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	_, err = f.workflow.Cancel(order.ID, "")
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestWorkflow_ShipDeliver(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// Неоплаченный заказ отгрузить нельзя.
	if _, err := f.workflow.Ship(order.ID, "TRACK-1"); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError for pending order, got %v", err)
	}

	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	if _, err := f.workflow.Ship(order.ID, "  "); !errors.Is(err, domain.ErrTrackingRequired) {
		t.Fatalf("expected ErrTrackingRequired, got %v", err)
	}

	shipped, err := f.workflow.Ship(order.ID, "TRACK-1")
	if err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if shipped.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", shipped.Status)
	}
	if shipped.TrackingNumber != "TRACK-1" {
		t.Fatalf("expected tracking number, got %q", shipped.TrackingNumber)
	}

	delivered, err := f.workflow.Deliver(order.ID)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if delivered.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", delivered.Status)
	}

	// Delivered — терминальный статус.
	if _, err := f.workflow.Deliver(order.ID); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestWorkflow_RefundConfirmedOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 3})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	refunded, err := f.workflow.Refund(order.ID, domain.PaymentInfo{})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("expected refunded payment, got %s", refunded.PaymentStatus)
	}
	if refunded.Status != domain.OrderStatusConfirmed {
		t.Fatalf("expected order status unchanged, got %s", refunded.Status)
	}
	if len(f.mock.RefundCalls) != 1 || f.mock.RefundCalls[0] != 3000 {
		t.Fatalf("unexpected refund calls: %v", f.mock.RefundCalls)
	}

	// Возврат средств освобождает сток.
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock released on refund, got %d", got)
	}
}

func TestWorkflow_RefundAfterCancelDoesNotDoubleRelease(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 3})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.workflow.Cancel(order.ID, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected stock released by cancel, got %d", got)
	}

	refunded, err := f.workflow.Refund(order.ID, domain.PaymentInfo{})
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("expected refunded payment, got %s", refunded.PaymentStatus)
	}

	// Cancel уже вернул сток, Refund его не трогает.
	if got := f.available(t, "product-1"); got != 10 {
		t.Fatalf("expected no double release, got %d", got)
	}
}

func TestWorkflow_RefundUnpaidRejected(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 1})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := f.workflow.Refund(order.ID, domain.PaymentInfo{}); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestWorkflow_RefundDeclinedKeepsPaymentCompleted(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	f.mock.RefundErr = &domain.PaymentError{Method: domain.PaymentMethodCreditCard, Reason: "provider unavailable"}
	if _, err := f.workflow.Refund(order.ID, domain.PaymentInfo{}); !domain.IsPaymentError(err) {
		t.Fatalf("expected PaymentError, got %v", err)
	}

	stored, err := f.workflow.Get(order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.PaymentStatus != domain.PaymentStatusCompleted {
		t.Fatalf("expected payment reverted to completed, got %s", stored.PaymentStatus)
	}
	// Неуспешный возврат стока не освобождает.
	if got := f.available(t, "product-1"); got != 8 {
		t.Fatalf("expected stock still reserved, got %d", got)
	}

	// После восстановления провайдера возврат проходит.
	f.mock.RefundErr = nil
	refunded, err := f.workflow.Refund(order.ID, domain.PaymentInfo{})
	if err != nil {
		t.Fatalf("refund retry failed: %v", err)
	}
	if refunded.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("expected refunded, got %s", refunded.PaymentStatus)
	}
}

func TestWorkflow_SetShippingCost(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := f.workflow.SetShippingCost(order.ID, -1); !errors.Is(err, domain.ErrAmountNegative) {
		t.Fatalf("expected ErrAmountNegative, got %v", err)
	}

	updated, err := f.workflow.SetShippingCost(order.ID, 499)
	if err != nil {
		t.Fatalf("set shipping cost failed: %v", err)
	}
	if updated.ShippingCostMinor != 499 {
		t.Fatalf("expected shipping cost 499, got %d", updated.ShippingCostMinor)
	}
	if updated.TotalMinor() != 2000+499 {
		t.Fatalf("expected total with shipping, got %d", updated.TotalMinor())
	}

	// После подтверждения стоимость доставки заморожена.
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.workflow.SetShippingCost(order.ID, 999); !domain.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}

	// Оплата списала сумму с учётом доставки.
	if f.mock.ChargeCalls[0] != 2499 {
		t.Fatalf("expected charge 2499, got %d", f.mock.ChargeCalls[0])
	}
}

func TestWorkflow_TimelineRecordsLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "product-1", 1000, 10)
	f.seedCart(t, "customer-1", map[string]int32{"product-1": 2})

	order, err := f.workflow.CreateOrder("customer-1", "")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.workflow.Pay(order.ID, domain.PaymentMethodCreditCard, domain.PaymentInfo{}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.workflow.Cancel(order.ID, "damaged packaging"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	events, err := f.workflow.Timeline(order.ID)
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 timeline events, got %d", len(events))
	}
	if events[0].Type != "OrderCreated" || events[1].Type != "OrderConfirmed" || events[2].Type != "OrderCanceled" {
		t.Fatalf("unexpected event sequence: %s, %s, %s", events[0].Type, events[1].Type, events[2].Type)
	}
	if events[2].Reason != "damaged packaging" {
		t.Fatalf("expected cancel reason preserved, got %q", events[2].Reason)
	}
}

func customerID(i int) string {
	return "customer-" + string(rune('a'+i))
}
