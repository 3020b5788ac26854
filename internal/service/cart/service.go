package cart

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Service реализует операции над корзиной покупателя. Проверки остатка здесь
// advisory: они отсекают заведомо невыполнимые количества, но авторитетная
// проверка выполняется workflow при оформлении заказа, потому что сток может
// измениться между правкой корзины и checkout.
type Service struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	ledger   domain.StockLedger
	logger   *log.Entry
}

// NewService конструирует сервис корзины с зависимостями.
func NewService(
	carts domain.CartRepository,
	products domain.ProductRepository,
	ledger domain.StockLedger,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		carts:    carts,
		products: products,
		ledger:   ledger,
		logger:   logger,
	}
}

// Get возвращает корзину покупателя; у нового покупателя она пустая.
func (s *Service) Get(customerID string) (domain.Cart, error) {
	return s.load(customerID)
}

// AddItem добавляет товар в корзину, сливая количество с уже существующей
// позицией. Если суммарное количество превышает текущий остаток — отказ с
// InsufficientStockError.
func (s *Service) AddItem(customerID, productID string, qty int32) (domain.Cart, error) {
	if qty <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if _, err := s.activeProduct(productID); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.load(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	total := cart.Quantity(productID) + qty
	if err := s.checkAvailability(productID, total); err != nil {
		return domain.Cart{}, err
	}

	cart.Upsert(productID, total)
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}

	s.logger.WithFields(log.Fields{
		"customer_id": customerID,
		"product_id":  productID,
		"qty":         total,
	}).Debug("cart line updated")
	return cart, nil
}

// SetQuantity выставляет точное количество позиции. Ноль удаляет позицию,
// отрицательное количество — ErrInvalidQuantity.
func (s *Service) SetQuantity(customerID, productID string, qty int32) (domain.Cart, error) {
	if qty < 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	cart, err := s.load(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	if qty == 0 {
		cart.Remove(productID)
		if err := s.carts.Save(cart); err != nil {
			return domain.Cart{}, err
		}
		return cart, nil
	}

	if _, err := s.activeProduct(productID); err != nil {
		return domain.Cart{}, err
	}
	if err := s.checkAvailability(productID, qty); err != nil {
		return domain.Cart{}, err
	}

	cart.Upsert(productID, qty)
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// RemoveItem удаляет позицию безусловно.
func (s *Service) RemoveItem(customerID, productID string) (domain.Cart, error) {
	cart, err := s.load(customerID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart.Remove(productID)
	if err := s.carts.Save(cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Clear опустошает корзину безусловно.
func (s *Service) Clear(customerID string) error {
	cart, err := s.load(customerID)
	if err != nil {
		return err
	}

	cart.Clear()
	return s.carts.Save(cart)
}

// TotalMinor считает сумму корзины по живым ценам каталога. В отличие от
// заказа, корзина цену не замораживает.
func (s *Service) TotalMinor(customerID string) (int64, error) {
	cart, err := s.load(customerID)
	if err != nil {
		return 0, err
	}

	var sum int64
	for _, line := range cart.SortedLines() {
		product, err := s.products.Get(line.ProductID)
		if err != nil {
			return 0, err
		}
		sum += int64(line.Qty) * product.PriceMinor
	}
	return sum, nil
}

func (s *Service) load(customerID string) (domain.Cart, error) {
	cart, err := s.carts.Get(customerID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return domain.NewCart(customerID), nil
	}
	if err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

func (s *Service) activeProduct(productID string) (domain.Product, error) {
	product, err := s.products.Get(productID)
	if err != nil {
		return domain.Product{}, err
	}
	if !product.Active {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) checkAvailability(productID string, qty int32) error {
	available, err := s.ledger.AvailableQuantity(productID)
	if err != nil {
		return err
	}
	if qty > available {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}
	return nil
}
