package domain

import "time"

// Product — карточка товара в каталоге. Остаток хранится не здесь, а в
// StockLedger: все мутации стока идут через него.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Category    string
	// PriceMinor — текущая цена за единицу в минимальных денежных единицах.
	// Заказы замораживают цену на момент покупки и на смену цены не реагируют.
	PriceMinor int64
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate проверяет корректность полей карточки товара.
func (p *Product) Validate() []error {
	var errs []error

	if p.SKU == "" {
		errs = append(errs, ErrProductSKURequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	return errs
}
