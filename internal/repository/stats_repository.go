package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CustomerTotals(ctx context.Context) (model.CustomerTotals, error) {
	var totals model.CustomerTotals

	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM customers
		WHERE is_deleted = ?
	`, false).Scan(&totals.Total).Error
	if err != nil {
		return totals, err
	}

	if err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM customers
		WHERE is_deleted = ?
		GROUP BY status
		ORDER BY status ASC
	`, false).Scan(&totals.ByStatus).Error; err != nil {
		return totals, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT level AS status, COUNT(*) AS count
		FROM customers
		WHERE is_deleted = ?
		GROUP BY level
		ORDER BY level ASC
	`, false).Scan(&totals.ByLevel).Error
	return totals, err
}

// DocumentTotals aggregates one document table. The table and amount column
// names come from a fixed internal list, never from request input.
func (r *StatsRepository) DocumentTotals(ctx context.Context, table, amountColumn string) (model.DocumentTotals, error) {
	var totals model.DocumentTotals

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(`+amountColumn+`), 0) AS total_amount
		FROM `+table+`
		WHERE is_deleted = ?
	`, false).Scan(&totals).Error
	if err != nil {
		return totals, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM `+table+`
		WHERE is_deleted = ?
		GROUP BY status
		ORDER BY status ASC
	`, false).Scan(&totals.ByStatus).Error
	return totals, err
}

// ContractPayments sums paid and remaining amounts over live contracts.
func (r *StatsRepository) ContractPayments(ctx context.Context) (paid, remaining string, err error) {
	var row struct {
		Paid      string
		Remaining string
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(paid_amount), 0) AS paid,
			COALESCE(SUM(remaining_amount), 0) AS remaining
		FROM contracts
		WHERE is_deleted = ?
	`, false).Scan(&row).Error
	return row.Paid, row.Remaining, err
}

// RecentActivities returns the newest documents across all three document
// tables, interleaved by creation time.
func (r *StatsRepository) RecentActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []model.Activity
	err := r.db.WithContext(ctx).Raw(`
		SELECT * FROM (
			SELECT
				'quote' AS entity_type,
				q.id AS entity_id,
				q.quote_number AS number,
				COALESCE(c.name, '') AS customer_name,
				q.status,
				q.total_amount,
				q.created_at
			FROM quotes q
			LEFT JOIN customers c ON c.id = q.customer_id
			WHERE q.is_deleted = ?
			UNION ALL
			SELECT
				'contract' AS entity_type,
				ct.id AS entity_id,
				ct.contract_number AS number,
				COALESCE(c.name, '') AS customer_name,
				ct.status,
				ct.contract_amount AS total_amount,
				ct.created_at
			FROM contracts ct
			LEFT JOIN customers c ON c.id = ct.customer_id
			WHERE ct.is_deleted = ?
			UNION ALL
			SELECT
				'order' AS entity_type,
				o.id AS entity_id,
				o.order_number AS number,
				COALESCE(c.name, '') AS customer_name,
				o.status,
				o.total_amount,
				o.created_at
			FROM orders o
			LEFT JOIN customers c ON c.id = o.customer_id
			WHERE o.is_deleted = ?
		) recent
		ORDER BY created_at DESC
		LIMIT ?
	`, false, false, false, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
