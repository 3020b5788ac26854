package domain

import (
	"sort"
	"time"
)

// CartLine — позиция корзины: товар и желаемое количество. Цена в корзине
// не фиксируется, Total всегда считается по живой цене каталога.
type CartLine struct {
	ProductID string
	Qty       int32
	AddedAt   time.Time
}

// Cart — staging-область покупателя: товар → позиция, не больше одной
// позиции на товар. Проверки стока в корзине advisory: авторитетная проверка
// выполняется при оформлении заказа, потому что остаток может измениться
// между редактированием корзины и checkout.
type Cart struct {
	CustomerID string
	Lines      map[string]CartLine
	UpdatedAt  time.Time
}

// NewCart создаёт пустую корзину покупателя.
func NewCart(customerID string) Cart {
	return Cart{
		CustomerID: customerID,
		Lines:      make(map[string]CartLine),
		UpdatedAt:  time.Now().UTC(),
	}
}

// IsEmpty сообщает, есть ли в корзине хотя бы одна позиция.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Quantity возвращает текущее количество товара в корзине (0, если его нет).
func (c *Cart) Quantity(productID string) int32 {
	return c.Lines[productID].Qty
}

// Upsert добавляет позицию или заменяет количество существующей.
func (c *Cart) Upsert(productID string, qty int32) {
	now := time.Now().UTC()
	line, ok := c.Lines[productID]
	if !ok {
		line = CartLine{ProductID: productID, AddedAt: now}
	}
	line.Qty = qty
	c.Lines[productID] = line
	c.UpdatedAt = now
}

// Remove удаляет позицию товара, если она есть.
func (c *Cart) Remove(productID string) {
	delete(c.Lines, productID)
	c.UpdatedAt = time.Now().UTC()
}

// Clear опустошает корзину. Вызывается атомарно при конвертации в заказ.
func (c *Cart) Clear() {
	c.Lines = make(map[string]CartLine)
	c.UpdatedAt = time.Now().UTC()
}

// SortedLines возвращает позиции, отсортированные по product_id. Порядок
// фиксированный: его использует workflow для глобального порядка блокировок
// при резервировании нескольких товаров.
func (c *Cart) SortedLines() []CartLine {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID < lines[j].ProductID
	})
	return lines
}

// Clone возвращает глубокую копию корзины, чтобы value-копии из репозитория
// не делили map с вызывающим.
func (c *Cart) Clone() Cart {
	clone := Cart{
		CustomerID: c.CustomerID,
		Lines:      make(map[string]CartLine, len(c.Lines)),
		UpdatedAt:  c.UpdatedAt,
	}
	for id, line := range c.Lines {
		clone.Lines[id] = line
	}
	return clone
}
