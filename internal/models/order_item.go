package models

import "time"

// OrderItem is one line of an order. It references exactly one of
// {ProductID, ComboID} and carries the unit price at order time, so
// historical orders are immune to later price changes.
type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null;index"`
	ProductID  *uint    `json:"product_id"`
	Product    *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	ComboID    *uint    `json:"combo_id"`
	Combo      *Combo   `json:"combo,omitempty" gorm:"foreignKey:ComboID"`
	Name       string   `json:"name" gorm:"not null"` // snapshot at order time
	Quantity   int      `json:"quantity" gorm:"not null"`
	UnitPrice  float64  `json:"unit_price" gorm:"not null"`
	TotalPrice float64  `json:"total_price" gorm:"not null"`
	Notes      string   `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
