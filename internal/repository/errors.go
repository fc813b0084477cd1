package repository

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

// InsufficientStockError names the offending product and the available vs
// requested quantities so checkout failures are self-explanatory.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}
