package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы покупателя с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// ProductRepository описывает каталог товаров.
type ProductRepository interface {
	// Put сохраняет или обновляет карточку товара.
	Put(product Product) error
	// Get возвращает товар или ErrProductNotFound.
	Get(id string) (Product, error)
	// Search возвращает активные товары: имя фильтруется по подстроке без
	// учёта регистра, категория — по точному совпадению. Пустой аргумент
	// отключает соответствующий фильтр.
	Search(name, category string) ([]Product, error)
}

// CartRepository хранит корзины покупателей: не больше одной на покупателя.
type CartRepository interface {
	// Get возвращает корзину покупателя или ErrCartNotFound.
	Get(customerID string) (Cart, error)
	// Save перезаписывает корзину покупателя.
	Save(cart Cart) error
}
