package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Column order of the product import sheet. The first row is a header.
const (
	colCategorySlug = iota
	colName
	colNameAr
	colPrice
	colSalePrice
	colStock
	colFeatured
	colImageURL
	colDescriptionAr
	minImportColumns = colStock + 1
)

var importDryRun bool

var importProductsCmd = &cobra.Command{
	Use:   "import-products <file.xlsx>",
	Short: "Bulk create products from the first sheet of an XLSX file",
	Long: `Columns: category_slug, name, name_ar, price, sale_price, stock,
featured, image_url, description_ar. Rows that fail to parse are skipped
and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, skipped, err := readProductsFromXLSX(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range skipped {
			fmt.Fprintf(out, "skip row %d: %s\n", s.row, s.reason)
		}
		fmt.Fprintf(out, "%d rows to import, %d skipped\n", len(rows), len(skipped))
		if importDryRun {
			return nil
		}

		return withDB(func(database *gorm.DB) error {
			productRepo := repository.NewProductRepository(database)
			categoryRepo := repository.NewCategoryRepository(database)
			products := service.NewProductService(
				database,
				productRepo,
				categoryRepo,
				repository.NewCartRepository(database),
				repository.NewWishlistRepository(database),
				repository.NewOrderRepository(database),
				nil,
			)
			created, failed := importProducts(cmd.Context(), products, categoryRepo, rows)
			for _, f := range failed {
				fmt.Fprintf(out, "failed row %d: %s\n", f.row, f.reason)
			}
			fmt.Fprintf(out, "imported %d products\n", created)
			return nil
		})
	},
}

func init() {
	importProductsCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate the file without writing")
}

type importRow struct {
	row          int
	categorySlug string
	input        service.ProductInput
}

type rowProblem struct {
	row    int
	reason string
}

func readProductsFromXLSX(path string) ([]importRow, []rowProblem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.New("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, errors.New("no data rows found in XLSX file")
	}

	var (
		parsed  []importRow
		skipped []rowProblem
	)
	for i, cells := range rows[1:] {
		rowNum := i + 2
		row, err := parseImportRow(cells)
		if err != nil {
			skipped = append(skipped, rowProblem{row: rowNum, reason: err.Error()})
			continue
		}
		row.row = rowNum
		parsed = append(parsed, row)
	}
	return parsed, skipped, nil
}

func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func parseImportRow(cells []string) (importRow, error) {
	if len(cells) < minImportColumns {
		return importRow{}, fmt.Errorf("expected at least %d columns, got %d", minImportColumns, len(cells))
	}
	row := importRow{categorySlug: strings.ToLower(cell(cells, colCategorySlug))}
	if row.categorySlug == "" {
		return row, errors.New("category_slug is empty")
	}

	price, err := decimal.NewFromString(cell(cells, colPrice))
	if err != nil {
		return row, fmt.Errorf("invalid price %q", cell(cells, colPrice))
	}
	stock, err := strconv.Atoi(cell(cells, colStock))
	if err != nil {
		return row, fmt.Errorf("invalid stock %q", cell(cells, colStock))
	}

	row.input = service.ProductInput{
		Name:          cell(cells, colName),
		NameAr:        cell(cells, colNameAr),
		DescriptionAr: cell(cells, colDescriptionAr),
		Price:         price.Round(2),
		Stock:         stock,
	}
	if raw := cell(cells, colSalePrice); raw != "" {
		sale, err := decimal.NewFromString(raw)
		if err != nil {
			return row, fmt.Errorf("invalid sale_price %q", raw)
		}
		sale = sale.Round(2)
		row.input.SalePrice = &sale
	}
	if raw := cell(cells, colFeatured); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return row, fmt.Errorf("invalid featured %q", raw)
		}
		row.input.Featured = featured
	}
	if url := cell(cells, colImageURL); url != "" {
		row.input.Images = []string{url}
	}
	return row, nil
}

// importProducts creates each row through the product service so category
// counts stay consistent. Failures are collected rather than aborting.
func importProducts(ctx context.Context, products service.ProductService, categories repository.CategoryRepository, rows []importRow) (int, []rowProblem) {
	categoryIDs := make(map[string]uint)
	created := 0
	var failed []rowProblem

	for _, row := range rows {
		id, ok := categoryIDs[row.categorySlug]
		if !ok {
			category, err := categories.FindBySlug(row.categorySlug)
			if err != nil {
				failed = append(failed, rowProblem{row: row.row, reason: fmt.Sprintf("unknown category %q", row.categorySlug)})
				continue
			}
			id = category.ID
			categoryIDs[row.categorySlug] = id
		}

		input := row.input
		input.CategoryID = id
		if _, err := products.CreateProduct(ctx, input); err != nil {
			failed = append(failed, rowProblem{row: row.row, reason: err.Error()})
			continue
		}
		created++
	}
	return created, failed
}
