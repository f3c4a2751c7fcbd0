package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type ContractFilter struct {
	Search      string
	Status      string
	CustomerID  uint
	SalesUserID uint
}

func (r *ContractRepository) List(ctx context.Context, filter ContractFilter, page Page) ([]model.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Contract{}).Where("is_deleted = ?", false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("contract_number LIKE ? OR title LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SalesUserID != 0 {
		query = query.Where("sales_user_id = ?", filter.SalesUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contracts []model.Contract
	err := paginate(query.Preload("Customer").Preload("SalesUser").Order("created_at DESC"), page).
		Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("SalesUser").
		Preload("Quote").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetForUpdate loads the contract row with a row lock where supported.
// Payment recording and transitions go through this inside a transaction.
func (r *ContractRepository) GetForUpdate(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	err := lockForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) Save(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// CountOrders counts live orders placed under the contract.
func (r *ContractRepository) CountOrders(ctx context.Context, contractID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("contract_id = ? AND is_deleted = ?", contractID, false).
		Count(&count).Error
	return count, err
}

func (r *ContractRepository) SoftDelete(ctx context.Context, contract *model.Contract) error {
	contract.IsDeleted = true
	return r.db.WithContext(ctx).Save(contract).Error
}
