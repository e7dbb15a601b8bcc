package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const batchSize = 500

// Sheet columns, in order.
const (
	colName = iota
	colPrice
	colDescription
	colImageURL
	colStock
	colLocation
	columnCount
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped rows: %d)\n", len(products), skipped)
	if len(products) == 0 {
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

// readProductsFromXLSX parses the first sheet. The first row is a header;
// invalid and duplicate rows are skipped and counted.
func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}

		product, err := parseProductRow(row)
		if err != nil {
			fmt.Printf("Row %d skipped: %v\n", i+1, err)
			skipped++
			continue
		}

		key := strings.ToLower(product.Name + "|" + product.Location)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		products = append(products, product)
	}

	return products, skipped, nil
}

func parseProductRow(row []string) (model.Product, error) {
	if len(row) < columnCount {
		return model.Product{}, fmt.Errorf("expected %d columns, got %d", columnCount, len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	name := row[colName]
	if name == "" {
		return model.Product{}, fmt.Errorf("name is empty")
	}

	price, err := decimal.NewFromString(strings.TrimPrefix(row[colPrice], "$"))
	if err != nil || !price.IsPositive() {
		return model.Product{}, fmt.Errorf("invalid price %q", row[colPrice])
	}

	if !util.IsValidURL(row[colImageURL]) {
		return model.Product{}, fmt.Errorf("invalid image url %q", row[colImageURL])
	}

	stock, err := strconv.Atoi(row[colStock])
	if err != nil || stock < 0 {
		return model.Product{}, fmt.Errorf("invalid stock %q", row[colStock])
	}

	if row[colLocation] == "" {
		return model.Product{}, fmt.Errorf("location is empty")
	}

	return model.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Price:         price,
		Description:   row[colDescription],
		ImageURL:      row[colImageURL],
		StockQuantity: stock,
		Location:      row[colLocation],
	}, nil
}
