package models

import "time"

type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementSale       MovementType = "SALE"
	MovementProduction MovementType = "PRODUCTION"
)

// StockMovement records every change to a product's stock with its reason,
// regardless of which endpoint caused it.
type StockMovement struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	ProductID uint         `json:"product_id" gorm:"not null;index"`
	Product   *Product     `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Type      MovementType `json:"type" gorm:"not null"`
	Quantity  int          `json:"quantity" gorm:"not null"`
	Reason    string       `json:"reason" gorm:"type:text"`
	OrderID   *uint        `json:"order_id"`
	CreatedAt time.Time    `json:"created_at"`
}
