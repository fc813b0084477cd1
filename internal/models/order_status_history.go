package models

import "time"

// OrderStatusHistory is an append-only audit row per status change.
// Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	OrderID   uint        `json:"order_id" gorm:"not null;index"`
	Status    OrderStatus `json:"status" gorm:"not null"`
	Notes     string      `json:"notes" gorm:"type:text"`
	ChangedBy string      `json:"changed_by"` // staff member, empty for system/provider changes
	CreatedAt time.Time   `json:"created_at"`
}
