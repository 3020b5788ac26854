package cart_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/stock"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func newFixture(t *testing.T) (*cart.Service, *stock.Ledger, domain.ProductRepository) {
	t.Helper()

	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	ledger := stock.NewLedger(nil)

	now := time.Now().UTC()
	product := domain.Product{
		ID:         "prod-1",
		SKU:        "sku-1",
		Name:       "Iphone X",
		PriceMinor: 99999,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := products.Put(product); err != nil {
		t.Fatalf("put product: %v", err)
	}
	if err := ledger.AddStock(product.ID, 10); err != nil {
		t.Fatalf("add stock: %v", err)
	}

	return cart.NewService(carts, products, ledger, nil), ledger, products
}

func TestService_AddItemMerges(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	got, err := svc.AddItem("customer-1", "prod-1", 3)
	if err != nil {
		t.Fatalf("add item again: %v", err)
	}
	if got.Quantity("prod-1") != 5 {
		t.Fatalf("quantity = %d, want 5", got.Quantity("prod-1"))
	}
}

func TestService_AddItemAdvisoryStockCheck(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 8); err != nil {
		t.Fatalf("add item: %v", err)
	}
	// 8 уже в корзине, остаток 10: ещё 3 сверх лимита.
	_, err := svc.AddItem("customer-1", "prod-1", 3)
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	// Advisory-отказ не трогает сток.
	cartState, _ := svc.Get("customer-1")
	if cartState.Quantity("prod-1") != 8 {
		t.Fatalf("quantity = %d, want 8", cartState.Quantity("prod-1"))
	}
}

func TestService_AddItemValidation(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddItem("customer-1", "ghost", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestService_SetQuantity(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if _, err := svc.SetQuantity("customer-1", "prod-1", -1); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.SetQuantity("customer-1", "prod-1", 11); !domain.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	got, err := svc.SetQuantity("customer-1", "prod-1", 7)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got.Quantity("prod-1") != 7 {
		t.Fatalf("quantity = %d, want 7", got.Quantity("prod-1"))
	}

	// Ноль удаляет позицию.
	got, err = svc.SetQuantity("customer-1", "prod-1", 0)
	if err != nil {
		t.Fatalf("set quantity to zero: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("cart must be empty after SetQuantity(0)")
	}
}

func TestService_TotalUsesLivePrice(t *testing.T) {
	svc, _, products := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 3); err != nil {
		t.Fatalf("add item: %v", err)
	}

	total, err := svc.TotalMinor("customer-1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 3*99999 {
		t.Fatalf("total = %d, want %d", total, 3*99999)
	}

	// Смена цены каталога сразу отражается на сумме корзины.
	product, _ := products.Get("prod-1")
	product.PriceMinor = 50000
	if err := products.Put(product); err != nil {
		t.Fatalf("update product: %v", err)
	}

	total, err = svc.TotalMinor("customer-1")
	if err != nil {
		t.Fatalf("total after reprice: %v", err)
	}
	if total != 3*50000 {
		t.Fatalf("total = %d, want %d", total, 3*50000)
	}
}

func TestService_RemoveAndClear(t *testing.T) {
	svc, _, _ := newFixture(t)

	if _, err := svc.AddItem("customer-1", "prod-1", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	got, err := svc.RemoveItem("customer-1", "prod-1")
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if !got.IsEmpty() {
		t.Fatal("cart must be empty after remove")
	}

	if _, err := svc.AddItem("customer-1", "prod-1", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := svc.Clear("customer-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cartState, _ := svc.Get("customer-1")
	if !cartState.IsEmpty() {
		t.Fatal("cart must be empty after clear")
	}
}
