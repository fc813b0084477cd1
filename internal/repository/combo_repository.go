package repository

import (
	"errors"
	"restaurant_manager/internal/models"

	"gorm.io/gorm"
)

type ComboRepository interface {
	Create(combo *models.Combo) error
	GetByID(id uint) (*models.Combo, error)
	GetByRestaurant(restaurantID string) ([]models.Combo, error)
	Update(combo *models.Combo) error
	Delete(id uint) error
}

type comboRepository struct {
	db *gorm.DB
}

func NewComboRepository(db *gorm.DB) ComboRepository {
	return &comboRepository{db: db}
}

func (r *comboRepository) Create(combo *models.Combo) error {
	return r.db.Create(combo).Error
}

func (r *comboRepository) GetByID(id uint) (*models.Combo, error) {
	var combo models.Combo
	err := r.db.Preload("Items").Preload("Items.Product").First(&combo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &combo, nil
}

func (r *comboRepository) GetByRestaurant(restaurantID string) ([]models.Combo, error) {
	var combos []models.Combo
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("restaurant_id = ?", restaurantID).
		Order("name").
		Find(&combos).Error
	return combos, err
}

func (r *comboRepository) Update(combo *models.Combo) error {
	// Replace the item set wholesale so removed items do not linger.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combo_id = ?", combo.ID).Delete(&models.ComboItem{}).Error; err != nil {
			return err
		}
		return tx.Save(combo).Error
	})
}

func (r *comboRepository) Delete(id uint) error {
	return r.db.Delete(&models.Combo{}, id).Error
}
