package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType marks the direction of a stock movement.
type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionIn || t == TransactionOut
}

func (t TransactionType) String() string {
	return string(t)
}

// StockTransaction is one row of the append-only stock ledger. Rows are
// created exactly once per accepted movement and never updated or deleted;
// deleting a product cascades its ledger rows away with it.
type StockTransaction struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Type      TransactionType `gorm:"column:transaction_type;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	User    *User    `gorm:"foreignKey:UserID"`
}

func (t *StockTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
