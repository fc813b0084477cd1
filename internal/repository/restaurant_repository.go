package repository

import (
	"errors"
	"restaurant_manager/internal/models"

	"gorm.io/gorm"
)

type RestaurantRepository interface {
	GetByID(id string) (*models.Restaurant, error)
	Upsert(restaurant *models.Restaurant) error
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) GetByID(id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.First(&restaurant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) Upsert(restaurant *models.Restaurant) error {
	return r.db.Save(restaurant).Error
}
