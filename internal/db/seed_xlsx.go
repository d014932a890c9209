package db

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/asthar/asthar-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	CategoriesSheet = "Categories"
	ProductsSheet   = "Products"
)

var (
	categoryColumns = []string{"Name", "Slug", "Icon"}
	productColumns  = []string{
		"Title", "Slug", "Description", "Price", "Discount Price",
		"Stock Status", "Thumbnail", "Images", "Category", "Flash Sale",
	}
)

// ReadCatalogXLSX parses a workbook with Categories and Products sheets. The
// first row of each sheet is a header. Images are comma separated and an
// empty Discount Price means no discount.
func ReadCatalogXLSX(r io.Reader) (CatalogSeed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return CatalogSeed{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	var catalog CatalogSeed

	rows, err := f.GetRows(CategoriesSheet)
	if err != nil {
		return CatalogSeed{}, fmt.Errorf("failed to read %s sheet: %w", CategoriesSheet, err)
	}
	for i, row := range dataRows(rows) {
		name, slug := cell(row, 0), cell(row, 1)
		if name == "" || slug == "" {
			return CatalogSeed{}, fmt.Errorf("%s row %d: name and slug are required", CategoriesSheet, i+2)
		}
		catalog.Categories = append(catalog.Categories, SeedCategory{
			Name: name,
			Slug: slug,
			Icon: cell(row, 2),
		})
	}

	rows, err = f.GetRows(ProductsSheet)
	if err != nil {
		return CatalogSeed{}, fmt.Errorf("failed to read %s sheet: %w", ProductsSheet, err)
	}
	for i, row := range dataRows(rows) {
		product, err := parseProductRow(row)
		if err != nil {
			return CatalogSeed{}, fmt.Errorf("%s row %d: %w", ProductsSheet, i+2, err)
		}
		catalog.Products = append(catalog.Products, product)
	}

	return catalog, nil
}

func parseProductRow(row []string) (SeedProduct, error) {
	p := SeedProduct{
		Title:        cell(row, 0),
		Slug:         cell(row, 1),
		Description:  cell(row, 2),
		Thumbnail:    cell(row, 6),
		CategorySlug: cell(row, 8),
		StockStatus:  model.StockInStock,
	}
	if p.Title == "" || p.Slug == "" || p.CategorySlug == "" {
		return SeedProduct{}, fmt.Errorf("title, slug and category are required")
	}

	listPrice, err := decimal.NewFromString(cell(row, 3))
	if err != nil {
		return SeedProduct{}, fmt.Errorf("invalid price %q", cell(row, 3))
	}
	p.Price = listPrice

	if raw := cell(row, 4); raw != "" {
		sale, err := decimal.NewFromString(raw)
		if err != nil {
			return SeedProduct{}, fmt.Errorf("invalid discount price %q", raw)
		}
		p.DiscountPrice = decimal.NewNullDecimal(sale)
	}

	if status := strings.ToUpper(cell(row, 5)); status != "" {
		switch model.StockStatus(status) {
		case model.StockInStock, model.StockOutOfStock:
			p.StockStatus = model.StockStatus(status)
		default:
			return SeedProduct{}, fmt.Errorf("invalid stock status %q", status)
		}
	}

	for _, image := range strings.Split(cell(row, 7), ",") {
		if image = strings.TrimSpace(image); image != "" {
			p.Images = append(p.Images, image)
		}
	}

	if raw := cell(row, 9); raw != "" {
		flash, err := strconv.ParseBool(raw)
		if err != nil {
			return SeedProduct{}, fmt.Errorf("invalid flash sale flag %q", raw)
		}
		p.IsFlashSale = flash
	}

	return p, nil
}

// WriteCatalogXLSX writes the catalog in the layout ReadCatalogXLSX expects
func WriteCatalogXLSX(w io.Writer, catalog CatalogSeed) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CategoriesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ProductsSheet); err != nil {
		return err
	}

	if err := writeRow(f, CategoriesSheet, 1, toRow(categoryColumns)); err != nil {
		return err
	}
	for i, c := range catalog.Categories {
		if err := writeRow(f, CategoriesSheet, i+2, []interface{}{c.Name, c.Slug, c.Icon}); err != nil {
			return err
		}
	}

	if err := writeRow(f, ProductsSheet, 1, toRow(productColumns)); err != nil {
		return err
	}
	for i, p := range catalog.Products {
		sale := ""
		if p.DiscountPrice.Valid {
			sale = p.DiscountPrice.Decimal.StringFixed(2)
		}
		row := []interface{}{
			p.Title, p.Slug, p.Description, p.Price.StringFixed(2), sale,
			string(p.StockStatus), p.Thumbnail, strings.Join(p.Images, ","),
			p.CategorySlug, strconv.FormatBool(p.IsFlashSale),
		}
		if err := writeRow(f, ProductsSheet, i+2, row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &values)
}

func toRow(columns []string) []interface{} {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}

// dataRows drops the header and blank rows
func dataRows(rows [][]string) [][]string {
	if len(rows) <= 1 {
		return nil
	}
	var out [][]string
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
