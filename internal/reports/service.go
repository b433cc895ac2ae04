package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lunaetstella/smartstock-backend/internal/products"
	"github.com/lunaetstella/smartstock-backend/internal/transactions"
	"github.com/lunaetstella/smartstock-backend/pkg/errors"
)

// Stats is the dashboard summary payload.
type Stats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
	RecentTxCount int64 `json:"recent_tx_count"`
}

// Service produces inventory reports.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	WriteCSV(ctx context.Context, w io.Writer) error
}

// ServiceParams wires the dependencies for the report service.
type ServiceParams struct {
	ProductRepo     products.Repository
	TransactionRepo transactions.Repository
}

type service struct {
	prodRepo products.Repository
	txRepo   transactions.Repository
}

// NewService constructs the report service.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &service{prodRepo: params.ProductRepo, txRepo: params.TransactionRepo}, nil
}

// Stats computes the dashboard counters.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.prodRepo.CountAll(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count products")
	}
	lowStock, err := s.prodRepo.CountBelowThreshold(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count low stock products")
	}
	txCount, err := s.txRepo.CountAll(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count transactions")
	}
	return &Stats{
		TotalProducts: total,
		LowStockCount: lowStock,
		RecentTxCount: txCount,
	}, nil
}

// WriteCSV streams the full catalog as CSV, one row per product.
func (s *service) WriteCSV(ctx context.Context, w io.Writer) error {
	items, err := s.prodRepo.List(ctx)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to list products")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "SKU", "Name", "Category", "Supplier", "Price", "Stock", "Min Threshold"}); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to write csv header")
	}
	for i := range items {
		p := &items[i]
		row := []string{
			p.ID.String(),
			p.SKU,
			p.Name,
			derefOrEmpty(p.Category),
			derefOrEmpty(p.Supplier),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			strconv.Itoa(p.StockQuantity),
			strconv.Itoa(p.MinStockThreshold),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(errors.CodeInternal, err, "failed to write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "failed to flush csv")
	}
	return nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
