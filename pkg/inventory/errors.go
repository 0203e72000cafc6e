package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Shortfall describes one product that cannot cover the requested quantity.
type Shortfall struct {
	ProductID uuid.UUID
	Requested int64
	Available int64
}

// InsufficientStockError carries the full itemized list of shortfalls so the
// caller can tell the user exactly which quantities to reduce.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		parts[i] = fmt.Sprintf("product %s: requested %d, only %d available", s.ProductID, s.Requested, s.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// IsInsufficientStockError reports whether err is a stock rejection.
func IsInsufficientStockError(err error) bool {
	var e *InsufficientStockError
	return errors.As(err, &e)
}
