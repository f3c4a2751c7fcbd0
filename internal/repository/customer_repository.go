package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CustomerFilter narrows the customer listing.
type CustomerFilter struct {
	Search      string
	Status      string
	Level       string
	SalesUserID uint
}

func (r *CustomerRepository) List(ctx context.Context, filter CustomerFilter, page Page) ([]model.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Customer{}).Where("is_deleted = ?", false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"name LIKE ? OR company LIKE ? OR contact_person LIKE ? OR phone LIKE ? OR email LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.SalesUserID != 0 {
		query = query.Where("sales_user_id = ?", filter.SalesUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := paginate(query.Order("created_at DESC"), page).Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Preload("SalesUser").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Customer{}).
		Where("name = ? AND is_deleted = ?", name, false)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Save(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// CountDocuments counts the live quotes, contracts and orders owned by a
// customer. Deletion is blocked while it is non-zero.
func (r *CustomerRepository) CountDocuments(ctx context.Context, customerID uint) (int64, error) {
	var total int64
	for _, m := range []interface{}{&model.Quote{}, &model.Contract{}, &model.Order{}} {
		var count int64
		err := r.db.WithContext(ctx).Model(m).
			Where("customer_id = ? AND is_deleted = ?", customerID, false).
			Count(&count).Error
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// SoftDelete flags the customer deleted; the row is kept.
func (r *CustomerRepository) SoftDelete(ctx context.Context, customer *model.Customer) error {
	customer.IsDeleted = true
	return r.db.WithContext(ctx).Save(customer).Error
}
