package service

import (
	"testing"

	"autoparts-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newInventoryService(t *testing.T) (InventoryService, *gorm.DB, *recorder) {
	db := setupDB(t)
	rec := &recorder{}
	svc := NewInventoryService(repository.NewProductRepo(db), repository.NewCategoryRepo(db), db, rec, zap.NewNop())
	return svc, db, rec
}

func TestInventoryService_ProductLifecycle(t *testing.T) {
	svc, _, rec := newInventoryService(t)

	category, err := svc.CreateCategory(&CategoryRequest{Name: "Brakes"}, testActor)
	require.NoError(t, err)

	product, err := svc.CreateProduct(&ProductRequest{
		SKU: " BRK-01 ", Name: "Brake pad", Stock: 4, Unit: "set", Price: dec("45.5"), CategoryID: &category.ID,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "BRK-01", product.SKU)
	assert.Equal(t, testActor.ID, product.CreatedBy)

	_, err = svc.CreateProduct(&ProductRequest{SKU: "BRK-01", Name: "Duplicate", Price: dec("1")}, testActor)
	assert.ErrorIs(t, err, ErrSKUExists)

	updated, err := svc.UpdateProduct(product.ID, &ProductRequest{
		SKU: "BRK-01A", Name: "Brake pad front", Stock: 9, Unit: "set", Price: dec("47"), CategoryID: &category.ID,
	}, testActor)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.True(t, updated.Price.Equal(dec("47")))

	fetched, err := svc.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "BRK-01A", fetched.SKU)
	require.NotNil(t, fetched.Category)
	assert.Equal(t, "Brakes", fetched.Category.Name)

	catalog, err := svc.GetCatalog()
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, 9, catalog[0].StockQuantity)

	require.NoError(t, svc.DeleteProduct(product.ID, testActor))
	_, err = svc.GetProduct(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(product.ID, testActor), ErrProductNotFound)

	assert.Equal(t, []string{"category_created", "product_created", "product_updated", "product_deleted"}, rec.actions())
}

func TestInventoryService_ProductValidation(t *testing.T) {
	svc, _, _ := newInventoryService(t)
	missing := uuid.New()

	tests := []struct {
		name string
		req  ProductRequest
	}{
		{"missing sku", ProductRequest{Name: "Bulb", Price: dec("1")}},
		{"negative stock", ProductRequest{SKU: "B1", Name: "Bulb", Stock: -1, Price: dec("1")}},
		{"negative price", ProductRequest{SKU: "B1", Name: "Bulb", Price: dec("-0.01")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.CreateProduct(&req, testActor)
			assert.Error(t, err)
		})
	}

	_, err := svc.CreateProduct(&ProductRequest{SKU: "B1", Name: "Bulb", Price: dec("1"), CategoryID: &missing}, testActor)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestInventoryService_UpdateSKUTaken(t *testing.T) {
	svc, db, _ := newInventoryService(t)
	seedProduct(t, db, "A-1", "1", 1)
	b := seedProduct(t, db, "B-1", "1", 1)

	_, err := svc.UpdateProduct(b.ID, &ProductRequest{SKU: "A-1", Name: "B", Price: dec("1")}, testActor)
	assert.ErrorIs(t, err, ErrSKUExists)

	_, err = svc.UpdateProduct(uuid.New(), &ProductRequest{SKU: "C-1", Name: "C", Price: dec("1")}, testActor)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestInventoryService_Categories(t *testing.T) {
	svc, db, _ := newInventoryService(t)

	filters, err := svc.CreateCategory(&CategoryRequest{Name: "Filters"}, testActor)
	require.NoError(t, err)
	lighting, err := svc.CreateCategory(&CategoryRequest{Name: "Lighting"}, testActor)
	require.NoError(t, err)

	_, err = svc.CreateCategory(&CategoryRequest{Name: "Filters"}, testActor)
	assert.ErrorIs(t, err, ErrCategoryExists)
	_, err = svc.UpdateCategory(lighting.ID, &CategoryRequest{Name: "Filters"}, testActor)
	assert.ErrorIs(t, err, ErrCategoryExists)

	renamed, err := svc.UpdateCategory(lighting.ID, &CategoryRequest{Name: "Lamps", Description: "Bulbs and LEDs"}, testActor)
	require.NoError(t, err)
	assert.Equal(t, "Lamps", renamed.Name)

	p := seedProduct(t, db, "FLT-1", "5", 1)
	require.NoError(t, db.Model(p).Update("category_id", filters.ID).Error)

	assert.ErrorIs(t, svc.DeleteCategory(filters.ID, testActor), ErrCategoryInUse)
	require.NoError(t, svc.DeleteCategory(lighting.ID, testActor))
	assert.ErrorIs(t, svc.DeleteCategory(lighting.ID, testActor), ErrCategoryNotFound)

	categories, err := svc.GetCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Filters", categories[0].Name)
}

func TestInventoryService_GetProductsFilter(t *testing.T) {
	svc, db, _ := newInventoryService(t)
	seedProduct(t, db, "OIL-1", "10", 1)
	seedProduct(t, db, "BRK-1", "10", 1)

	products, err := svc.GetProducts(repository.ProductFilter{Search: "oil"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "OIL-1", products[0].SKU)

	all, err := svc.GetProducts(repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// ordered by name
	assert.Equal(t, []string{"Part BRK-1", "Part OIL-1"}, []string{all[0].Name, all[1].Name})
}
