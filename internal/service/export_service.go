package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/sales-crm/internal/model"
	"github.com/nurpe/sales-crm/internal/repository"
)

type ExcelGenerator interface {
	QuoteRegister(quotes []model.Quote, now time.Time) ([]byte, error)
	OrderRegister(orders []model.Order) ([]byte, error)
}

type PDFGenerator interface {
	Quote(quote *model.Quote, now time.Time) ([]byte, error)
	Contract(contract *model.Contract) ([]byte, error)
}

type ExportService struct {
	db    *gorm.DB
	excel ExcelGenerator
	pdf   PDFGenerator
}

func NewExportService(db *gorm.DB, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{db: db, excel: excel, pdf: pdf}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// QuotesExcel renders the quote register matching the filter as a workbook.
func (s *ExportService) QuotesExcel(ctx context.Context, filter repository.QuoteFilter) (*ExportResult, error) {
	now := time.Now().UTC()
	quotes, err := repository.NewQuoteRepository(s.db).ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.QuoteRegister(quotes, now)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("quotes-%s.xlsx", now.Format("20060102")),
		Content:  content,
	}, nil
}

// OrdersExcel renders the order register matching the filter as a workbook.
func (s *ExportService) OrdersExcel(ctx context.Context, filter repository.OrderFilter) (*ExportResult, error) {
	orders, err := repository.NewOrderRepository(s.db).ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.OrderRegister(orders)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102")),
		Content:  content,
	}, nil
}

// QuotePDF renders one quote with its items as a printable document.
func (s *ExportService) QuotePDF(ctx context.Context, id uint) (*ExportResult, error) {
	quote, err := repository.NewQuoteRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	content, err := s.pdf.Quote(quote, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("%s.pdf", quote.QuoteNumber),
		Content:  content,
	}, nil
}

// ContractPDF renders one contract summary as a printable document.
func (s *ExportService) ContractPDF(ctx context.Context, id uint) (*ExportResult, error) {
	contract, err := repository.NewContractRepository(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	content, err := s.pdf.Contract(contract)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("%s.pdf", contract.ContractNumber),
		Content:  content,
	}, nil
}
