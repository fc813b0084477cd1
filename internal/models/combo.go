package models

import (
	"time"

	"gorm.io/gorm"
)

// Combo is a fixed-price bundle of products sold as one purchasable unit.
// Stock is tracked on the constituent products, not on the combo itself.
type Combo struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	RestaurantID string         `json:"restaurant_id" gorm:"not null;index"`
	Name         string         `json:"name" gorm:"not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Price        float64        `json:"price" gorm:"not null"`
	Active       bool           `json:"active" gorm:"default:true"`
	ImageURL     string         `json:"image_url"`
	Items        []ComboItem    `json:"items,omitempty" gorm:"foreignKey:ComboID"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type ComboItem struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	ComboID   uint     `json:"combo_id" gorm:"not null;index"`
	ProductID uint     `json:"product_id" gorm:"not null"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int      `json:"quantity" gorm:"not null;default:1"`
	Optional  bool     `json:"optional" gorm:"default:false"`
}
