package sales

import "errors"

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrNoSaleItems          = errors.New("sale requires at least one item")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
