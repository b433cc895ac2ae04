package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMinStockThreshold is applied when a product is created without an
// explicit reorder threshold.
const DefaultMinStockThreshold = 10

// Product is the catalog entry whose stock_quantity is owned by the
// transaction engine (plus the admin manual-correction path).
type Product struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SKU               string    `gorm:"column:sku;not null;uniqueIndex"`
	Name              string    `gorm:"column:name;not null"`
	Category          *string   `gorm:"column:category"`
	Supplier          *string   `gorm:"column:supplier"`
	Price             float64   `gorm:"column:price;not null;default:0"`
	StockQuantity     int       `gorm:"column:stock_quantity;not null;default:0"`
	MinStockThreshold int       `gorm:"column:min_stock_threshold;not null;default:10"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BelowThreshold reports whether current stock is at or under the reorder
// threshold.
func (p *Product) BelowThreshold() bool {
	return p.StockQuantity <= p.MinStockThreshold
}
