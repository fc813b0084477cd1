package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	RestaurantID string         `json:"restaurant_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	SortOrder    int            `json:"sort_order"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type Product struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	RestaurantID  string         `json:"restaurant_id" gorm:"not null;index"`
	CategoryID    uint           `json:"category_id" gorm:"index"`
	Category      *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name          string         `json:"name" gorm:"not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Price         float64        `json:"price" gorm:"not null"`
	StockQuantity int            `json:"stock_quantity" gorm:"not null;default:0"`
	MinimumStock  int            `json:"minimum_stock" gorm:"default:0"`
	Active        bool           `json:"active" gorm:"default:true"`
	Available     bool           `json:"available" gorm:"default:true"`
	Featured      bool           `json:"featured" gorm:"default:false"`
	ImageURL      string         `json:"image_url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// LowOnStock reports whether the product has fallen to or below its
// restock threshold.
func (p *Product) LowOnStock() bool {
	return p.StockQuantity <= p.MinimumStock
}
