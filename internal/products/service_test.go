package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	pkgerrors "github.com/lunaetstella/smartstock-backend/pkg/errors"
	"github.com/lunaetstella/smartstock-backend/pkg/migrate"
)

func buildTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrate(db.FromConn(conn)))

	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, conn
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := buildTestService(t)

	view, err := svc.Create(context.Background(), CreateProductRequest{
		SKU:           "A1",
		Name:          "Widget",
		Price:         9.5,
		StockQuantity: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "A1", view.SKU)
	assert.Equal(t, 12, view.StockQuantity)
	assert.Equal(t, models.DefaultMinStockThreshold, view.MinStockThreshold)
	assert.Nil(t, view.Category)
}

func TestCreateMissingRequiredFields(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "Widget"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Missing required fields", typed.Message())
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{SKU: "A1", Name: "Widget"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateProductRequest{SKU: "A1", Name: "Other"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "Product with this SKU already exists", typed.Message())
}

func TestUpdateIsPartial(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		SKU:           "A1",
		Name:          "Widget",
		Category:      strPtr("tools"),
		Price:         5,
		StockQuantity: 3,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateProductRequest{
		Price: floatPtr(7.25),
	})
	require.NoError(t, err)

	assert.Equal(t, 7.25, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "tools", *updated.Category)
	assert.Equal(t, 3, updated.StockQuantity)
}

func TestUpdateManualStockCorrection(t *testing.T) {
	svc, _ := buildTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{SKU: "A1", Name: "Widget", StockQuantity: 3})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateProductRequest{StockQuantity: intPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.StockQuantity)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductRequest{Name: strPtr("x")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Product not found", typed.Message())
}

func TestDelete(t *testing.T) {
	svc, conn := buildTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{SKU: "A1", Name: "Widget"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	err = conn.First(&models.Product{}, "id = ?", created.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = svc.Delete(ctx, created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAdjustStockGuardsNegative(t *testing.T) {
	_, conn := buildTestService(t)
	ctx := context.Background()
	repo := NewRepository(conn)

	product := &models.Product{SKU: "A1", Name: "Widget", StockQuantity: 5, MinStockThreshold: 10}
	require.NoError(t, repo.Create(ctx, product))

	rows, err := repo.AdjustStock(ctx, product.ID, -6)
	require.NoError(t, err)
	assert.EqualValues(t, 0, rows)

	rows, err = repo.AdjustStock(ctx, product.ID, -5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	reloaded, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.StockQuantity)
}
