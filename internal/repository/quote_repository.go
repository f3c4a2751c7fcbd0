package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

type QuoteFilter struct {
	Search      string
	Status      string
	CustomerID  uint
	SalesUserID uint
}

func (r *QuoteRepository) List(ctx context.Context, filter QuoteFilter, page Page) ([]model.Quote, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Quote{}).Where("is_deleted = ?", false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("quote_number LIKE ? OR title LIKE ?", pattern, pattern)
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

	var quotes []model.Quote
	err := paginate(query.Preload("Customer").Preload("SalesUser").Order("created_at DESC"), page).
		Find(&quotes).Error
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// ListAll returns every live quote matching the filter, newest first.
// Used by exports, which are not paginated.
func (r *QuoteRepository) ListAll(ctx context.Context, filter QuoteFilter) ([]model.Quote, error) {
	query := r.db.WithContext(ctx).Model(&model.Quote{}).Where("is_deleted = ?", false)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.SalesUserID != 0 {
		query = query.Where("sales_user_id = ?", filter.SalesUserID)
	}

	var quotes []model.Quote
	err := query.Preload("Customer").Preload("SalesUser").
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uint) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_deleted = ?", false).Order("sort_order ASC, id ASC")
		}).
		Preload("Customer").
		Preload("SalesUser").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetForUpdate loads the quote row with a row lock where the dialect
// supports one, without preloads. Used inside transactions that mutate it.
func (r *QuoteRepository) GetForUpdate(ctx context.Context, id uint) (*model.Quote, error) {
	var quote model.Quote
	err := lockForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) LoadItems(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).
		Where("quote_id = ? AND is_deleted = ?", quote.ID, false).
		Order("sort_order ASC, id ASC").
		Find(&quote.Items).Error
}

func (r *QuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) Save(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// ReplaceItems swaps the quote's line items for a new set. Old rows are
// hard-deleted; cascade semantics are owned by the quote.
func (r *QuoteRepository) ReplaceItems(ctx context.Context, quote *model.Quote, items []model.QuoteItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("quote_id = ?", quote.ID).Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].QuoteID = quote.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	quote.Items = items
	return nil
}

func (r *QuoteRepository) SoftDelete(ctx context.Context, quote *model.Quote) error {
	quote.IsDeleted = true
	return r.db.WithContext(ctx).Save(quote).Error
}

// MarkExpired sweeps quotes whose validity window has passed into the
// expired status. Expiry is otherwise observed lazily at read time.
func (r *QuoteRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("is_deleted = ? AND status IN ? AND valid_until < ?",
			false,
			[]model.QuoteStatus{model.QuoteStatusDraft, model.QuoteStatusSent},
			now.UTC().Format("2006-01-02"),
		).
		Update("status", model.QuoteStatusExpired)
	return result.RowsAffected, result.Error
}
