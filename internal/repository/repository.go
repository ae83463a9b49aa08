package repository

import "gorm.io/gorm"

type Repository struct {
	DB           *gorm.DB
	Catalog      CatalogRepo
	Inventories  InventoryRepo
	RentRequests RentRequestRepo
	Holdings     HoldingRepo
	Returns      ReturnRequestRepo
	Orders       FoodOrderRepo
	OrderItems   FoodOrderItemRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:           db,
		Catalog:      NewCatalogRepo(db),
		Inventories:  NewInventoryRepo(db),
		RentRequests: NewRentRequestRepo(db),
		Holdings:     NewHoldingRepo(db),
		Returns:      NewReturnRequestRepo(db),
		Orders:       NewFoodOrderRepo(db),
		OrderItems:   NewFoodOrderItemRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
