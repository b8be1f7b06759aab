package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	path := filepath.Join(t.TempDir(), "products.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var importHeader = []interface{}{
	"category_slug", "name", "name_ar", "price", "sale_price", "stock", "featured", "image_url", "description_ar",
}

func TestReadProductsFromXLSX(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		importHeader,
		{"figures", "Goku Figure", "مجسم غوكو", "150", "120.5", "8", "true", "https://cdn.example.com/goku.jpg", "مجسم"},
		{"figures", "Broken", "مكسور", "free", "", "1"},
		{"posters", "Short"},
		{"", "No Category", "بدون", "10", "", "1"},
		{"Posters", "Titan Poster", "ملصق العمالقة", "25", "", "40"},
	})

	rows, skipped, err := readProductsFromXLSX(path)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].row)
	assert.Equal(t, "figures", rows[0].categorySlug)
	assert.True(t, decimal.RequireFromString("150").Equal(rows[0].input.Price))
	require.NotNil(t, rows[0].input.SalePrice)
	assert.True(t, decimal.RequireFromString("120.5").Equal(*rows[0].input.SalePrice))
	assert.True(t, rows[0].input.Featured)
	assert.Equal(t, []string{"https://cdn.example.com/goku.jpg"}, rows[0].input.Images)
	assert.Equal(t, "posters", rows[1].categorySlug)

	require.Len(t, skipped, 3)
	assert.Equal(t, []int{3, 4, 5}, []int{skipped[0].row, skipped[1].row, skipped[2].row})
	assert.Contains(t, skipped[0].reason, "price")
}

func TestReadProductsFromXLSX_Empty(t *testing.T) {
	path := writeSheet(t, [][]interface{}{importHeader})

	_, _, err := readProductsFromXLSX(path)
	assert.Error(t, err)
}

func TestImportProducts(t *testing.T) {
	database, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(database)

	categoryRepo := repository.NewCategoryRepository(database)
	productRepo := repository.NewProductRepository(database)
	figures := &model.Category{Name: "Figures", NameAr: "مجسمات", Slug: "figures"}
	require.NoError(t, categoryRepo.Create(figures))

	products := service.NewProductService(
		database,
		productRepo,
		categoryRepo,
		repository.NewCartRepository(database),
		repository.NewWishlistRepository(database),
		repository.NewOrderRepository(database),
		nil,
	)

	sale := decimal.RequireFromString("200")
	rows := []importRow{
		{row: 2, categorySlug: "figures", input: service.ProductInput{Name: "Goku", NameAr: "غوكو", Price: decimal.RequireFromString("150"), Stock: 3}},
		{row: 3, categorySlug: "figures", input: service.ProductInput{Name: "Vegeta", NameAr: "فيجيتا", Price: decimal.RequireFromString("150"), SalePrice: &sale, Stock: 3}},
		{row: 4, categorySlug: "missing", input: service.ProductInput{Name: "Ghost", NameAr: "شبح", Price: decimal.RequireFromString("10"), Stock: 1}},
	}

	created, failed := importProducts(context.Background(), products, categoryRepo, rows)
	assert.Equal(t, 1, created)
	require.Len(t, failed, 2)
	assert.Equal(t, 3, failed[0].row, "sale price above price is rejected")
	assert.Equal(t, 4, failed[1].row)

	stored, err := categoryRepo.FindBySlug("figures")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ProductCount)
}

func TestExportFilter(t *testing.T) {
	filter, err := exportFilter("shipped", "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, filter.Status)
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, 31, filter.To.Day())

	_, err = exportFilter("lost", "", "")
	assert.Error(t, err)

	_, err = exportFilter("", "2026-02-01", "2026-01-01")
	assert.Error(t, err)

	_, err = exportFilter("", "01/02/2026", "")
	assert.Error(t, err)
}
