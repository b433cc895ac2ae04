package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/internal/products"
	"github.com/lunaetstella/smartstock-backend/internal/transactions"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/migrate"
)

func buildTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(db.FromConn(conn)))

	svc, err := NewService(ServiceParams{
		ProductRepo:     products.NewRepository(conn),
		TransactionRepo: transactions.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, sku string, stock, threshold int) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:               sku,
		Name:              "Product " + sku,
		Price:             2.5,
		StockQuantity:     stock,
		MinStockThreshold: threshold,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestStats(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	healthy := seedProduct(t, conn, "A1", 50, 10)
	seedProduct(t, conn, "A2", 3, 10)
	seedProduct(t, conn, "A3", 10, 10)

	actor := &models.User{
		Username:     "clerk",
		PasswordHash: "hash",
		Role:         models.RoleEmployee,
		Status:       models.UserStatusApproved,
	}
	require.NoError(t, conn.Create(actor).Error)
	require.NoError(t, conn.Create(&models.StockTransaction{
		ProductID: healthy.ID,
		UserID:    actor.ID,
		Quantity:  5,
		Type:      models.TransactionIn,
	}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalProducts)
	// Both at and below threshold count as low.
	assert.EqualValues(t, 2, stats.LowStockCount)
	assert.EqualValues(t, 1, stats.RecentTxCount)
}

func TestWriteCSV(t *testing.T) {
	svc, conn := buildTestService(t)

	product := seedProduct(t, conn, "A1", 12, 10)
	category := "tools"
	require.NoError(t, conn.Model(product).Update("category", category).Error)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"ID", "SKU", "Name", "Category", "Supplier", "Price", "Stock", "Min Threshold"}, records[0])

	row := records[1]
	assert.Equal(t, product.ID.String(), row[0])
	assert.Equal(t, "A1", row[1])
	assert.Equal(t, "Product A1", row[2])
	assert.Equal(t, "tools", row[3])
	assert.Equal(t, "", row[4])
	assert.Equal(t, "2.5", row[5])
	assert.Equal(t, "12", row[6])
	assert.Equal(t, "10", row[7])
}
