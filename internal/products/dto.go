package products

import (
	"github.com/google/uuid"

	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
)

// CreateProductRequest is the payload for registering a catalog item.
type CreateProductRequest struct {
	SKU               string   `json:"sku"`
	Name              string   `json:"name"`
	Category          *string  `json:"category"`
	Supplier          *string  `json:"supplier"`
	Price             float64  `json:"price" validate:"gte=0"`
	StockQuantity     int      `json:"stock_quantity" validate:"gte=0"`
	MinStockThreshold *int     `json:"min_stock_threshold" validate:"omitempty,gte=0"`
}

// UpdateProductRequest carries optional field corrections. Absent fields are
// left untouched; stock_quantity here is a manual correction that bypasses
// the transaction ledger.
type UpdateProductRequest struct {
	SKU               *string  `json:"sku" validate:"omitempty,min=1"`
	Name              *string  `json:"name" validate:"omitempty,min=1"`
	Category          *string  `json:"category"`
	Supplier          *string  `json:"supplier"`
	Price             *float64 `json:"price" validate:"omitempty,gte=0"`
	StockQuantity     *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinStockThreshold *int     `json:"min_stock_threshold" validate:"omitempty,gte=0"`
}

// ProductView is the wire representation of a catalog item.
type ProductView struct {
	ID                uuid.UUID `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Category          *string   `json:"category"`
	Supplier          *string   `json:"supplier"`
	Price             float64   `json:"price"`
	StockQuantity     int       `json:"stock_quantity"`
	MinStockThreshold int       `json:"min_stock_threshold"`
}

func toView(p *models.Product) *ProductView {
	return &ProductView{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Category:          p.Category,
		Supplier:          p.Supplier,
		Price:             p.Price,
		StockQuantity:     p.StockQuantity,
		MinStockThreshold: p.MinStockThreshold,
	}
}
