package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/sales-crm/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:svc_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = dbi.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.Contract{},
		&model.Order{},
		&model.OrderItem{},
		&model.DocumentSequence{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := dbi.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return dbi
}

func seedUser(t *testing.T, dbi *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username:     string(role) + "-user",
		Email:        string(role) + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       model.UserStatusActive,
	}
	if err := dbi.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func principalFor(user *model.User) model.Principal {
	return model.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func seedCustomer(t *testing.T, dbi *gorm.DB, principal model.Principal, name string) *model.Customer {
	t.Helper()
	customer, err := NewCustomerService(dbi).Create(context.Background(), principal, CustomerInput{Name: name})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}
