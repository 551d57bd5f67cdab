package repository

import "gorm.io/gorm"

type Repository struct {
	DB        *gorm.DB
	CarBrands CarBrandRepo
	CarModels CarModelRepo
	Brands    TyreBrandRepo
	Tyres     TyreRepo
	Orders    OrderRepo
	Items     OrderItemRepo
	Sessions  ChatSessionRepo
	Messages  ChatMessageRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:        db,
		CarBrands: NewCarBrandRepo(db),
		CarModels: NewCarModelRepo(db),
		Brands:    NewTyreBrandRepo(db),
		Tyres:     NewTyreRepo(db),
		Orders:    NewOrderRepo(db),
		Items:     NewOrderItemRepo(db),
		Sessions:  NewChatSessionRepo(db),
		Messages:  NewChatMessageRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against a Repository bound to a single transaction.
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
