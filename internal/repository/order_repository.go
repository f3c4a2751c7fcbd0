package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type OrderFilter struct {
	Search      string
	Status      string
	CustomerID  uint
	ContractID  uint
	SalesUserID uint
}

func (r *OrderRepository) List(ctx context.Context, filter OrderFilter, page Page) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("is_deleted = ?", false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR tracking_number LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ContractID != 0 {
		query = query.Where("contract_id = ?", filter.ContractID)
	}
	if filter.SalesUserID != 0 {
		query = query.Where("sales_user_id = ?", filter.SalesUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := paginate(query.Preload("Customer").Preload("SalesUser").Order("created_at DESC"), page).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAll returns every live order matching the filter, newest first.
// Used by exports, which are not paginated.
func (r *OrderRepository) ListAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("is_deleted = ?", false)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ContractID != 0 {
		query = query.Where("contract_id = ?", filter.ContractID)
	}
	if filter.SalesUserID != 0 {
		query = query.Where("sales_user_id = ?", filter.SalesUserID)
	}

	var orders []model.Order
	err := query.Preload("Customer").Preload("SalesUser").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_deleted = ?", false).Order("sort_order ASC, id ASC")
		}).
		Preload("Customer").
		Preload("SalesUser").
		Preload("Contract").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUpdate loads the order row with a row lock where supported.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := lockForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetItemForUpdate loads a single line of an order with a row lock where
// supported.
func (r *OrderRepository) GetItemForUpdate(ctx context.Context, orderID, itemID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := lockForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND order_id = ? AND is_deleted = ?", itemID, orderID, false).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *OrderRepository) LoadItems(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).
		Where("order_id = ? AND is_deleted = ?", order.ID, false).
		Order("sort_order ASC, id ASC").
		Find(&order.Items).Error
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) Save(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) SaveItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// ReplaceItems swaps the order's line items for a new set.
func (r *OrderRepository) ReplaceItems(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *OrderRepository) SoftDelete(ctx context.Context, order *model.Order) error {
	order.IsDeleted = true
	return r.db.WithContext(ctx).Save(order).Error
}
