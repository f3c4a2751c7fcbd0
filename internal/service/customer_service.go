package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type ListCustomersInput struct {
	Filter repository.CustomerFilter
	Page   repository.Page
}

func (s *CustomerService) List(ctx context.Context, input ListCustomersInput) ([]model.Customer, int64, error) {
	return repository.NewCustomerRepository(s.db).List(ctx, input.Filter, input.Page)
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := repository.NewCustomerRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

type CustomerInput struct {
	Name          string
	Company       string
	Industry      string
	CustomerType  model.CustomerType
	ContactPerson string
	Phone         string
	Mobile        string
	Email         string
	Website       string
	Address       string
	City          string
	Province      string
	Country       string
	PostalCode    string
	Source        string
	Level         model.CustomerLevel
	Status        model.CustomerStatus
	CreditLimit   string
	Description   string
	Notes         string
	Tags          []string
}

func (s *CustomerService) Create(ctx context.Context, principal model.Principal, input CustomerInput) (*model.Customer, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	input.Name = strings.TrimSpace(input.Name)
	v := &validator{}
	if input.Name == "" {
		v.addError("name", "name is required")
	}
	creditLimit, limitErr := parseAmount(input.CreditLimit)
	if limitErr != nil {
		v.addError("credit_limit", "must be a decimal number")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	customers := repository.NewCustomerRepository(s.db)
	if taken, err := customers.NameTaken(ctx, input.Name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: customer name already exists", ErrConflict)
	}

	salesUserID := principal.UserID
	customer := &model.Customer{
		Name:          input.Name,
		Company:       input.Company,
		Industry:      input.Industry,
		CustomerType:  defaultCustomerType(input.CustomerType),
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Mobile:        input.Mobile,
		Email:         input.Email,
		Website:       input.Website,
		Address:       input.Address,
		City:          input.City,
		Province:      input.Province,
		Country:       input.Country,
		PostalCode:    input.PostalCode,
		Source:        input.Source,
		Level:         defaultCustomerLevel(input.Level),
		Status:        defaultCustomerStatus(input.Status),
		CreditLimit:   creditLimit,
		SalesUserID:   &salesUserID,
		Description:   input.Description,
		Notes:         input.Notes,
	}
	customer.SetTagList(input.Tags)

	if err := customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, principal model.Principal, id uint, input CustomerInput) (*model.Customer, error) {
	if !principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	input.Name = strings.TrimSpace(input.Name)
	v := &validator{}
	if input.Name == "" {
		v.addError("name", "name is required")
	}
	creditLimit, limitErr := parseAmount(input.CreditLimit)
	if limitErr != nil {
		v.addError("credit_limit", "must be a decimal number")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	customers := repository.NewCustomerRepository(s.db)
	customer, err := customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if taken, err := customers.NameTaken(ctx, input.Name, id); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: customer name already exists", ErrConflict)
	}

	customer.Name = input.Name
	customer.Company = input.Company
	customer.Industry = input.Industry
	customer.CustomerType = defaultCustomerType(input.CustomerType)
	customer.ContactPerson = input.ContactPerson
	customer.Phone = input.Phone
	customer.Mobile = input.Mobile
	customer.Email = input.Email
	customer.Website = input.Website
	customer.Address = input.Address
	customer.City = input.City
	customer.Province = input.Province
	customer.Country = input.Country
	customer.PostalCode = input.PostalCode
	customer.Source = input.Source
	customer.Level = defaultCustomerLevel(input.Level)
	customer.Status = defaultCustomerStatus(input.Status)
	customer.CreditLimit = creditLimit
	customer.Description = input.Description
	customer.Notes = input.Notes
	customer.SetTagList(input.Tags)

	if err := customers.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete soft-deletes a customer. Blocked while any live quote, contract or
// order still references it.
func (s *CustomerService) Delete(ctx context.Context, principal model.Principal, id uint) error {
	if !principal.CanManage() {
		return ErrPermissionDenied
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customers := repository.NewCustomerRepository(tx)
		customer, err := customers.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		count, err := customers.CountDocuments(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: customer has %d documents", ErrConflict, count)
		}
		return customers.SoftDelete(ctx, customer)
	})
}

func defaultCustomerType(t model.CustomerType) model.CustomerType {
	if t == "" {
		return model.CustomerTypeIndividual
	}
	return t
}

func defaultCustomerLevel(l model.CustomerLevel) model.CustomerLevel {
	if l == "" {
		return model.CustomerLevelC
	}
	return l
}

func defaultCustomerStatus(st model.CustomerStatus) model.CustomerStatus {
	if st == "" {
		return model.CustomerStatusPotential
	}
	return st
}
