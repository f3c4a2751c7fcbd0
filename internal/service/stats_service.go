package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Dashboard assembles the headline counts and totals across customers and
// the three document types.
func (s *StatsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	stats := repository.NewStatsRepository(s.db)

	customers, err := stats.CustomerTotals(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := stats.DocumentTotals(ctx, "quotes", "total_amount")
	if err != nil {
		return nil, err
	}
	contracts, err := stats.DocumentTotals(ctx, "contracts", "contract_amount")
	if err != nil {
		return nil, err
	}
	orders, err := stats.DocumentTotals(ctx, "orders", "total_amount")
	if err != nil {
		return nil, err
	}
	paid, remaining, err := stats.ContractPayments(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Dashboard{
		Customers:               customers,
		Quotes:                  quotes,
		Contracts:               contracts,
		Orders:                  orders,
		ContractPaidAmount:      parseAggregate(paid),
		ContractRemainingAmount: parseAggregate(remaining),
	}, nil
}

func (s *StatsService) RecentActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	return repository.NewStatsRepository(s.db).RecentActivities(ctx, limit)
}

// parseAggregate reads a SUM() result scanned as text. Aggregates over an
// empty table come back as plain zero, which parses fine.
func parseAggregate(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
