package main

import (
	"fmt"
	"log"
	"os"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/db"
	"github.com/asthar/asthar-backend/pkg/logger"
)

const usage = `Usage:
  seed                    seed the built-in hat catalog
  seed import <file.xlsx> seed categories and products from a workbook
  seed export <file.xlsx> write the built-in catalog as a workbook template`

func main() {
	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "export" {
		if len(args) != 2 {
			log.Fatal(usage)
		}
		if err := exportCatalog(args[1]); err != nil {
			log.Fatal("Failed to export catalog: ", err)
		}
		fmt.Printf("Catalog template written to %s\n", args[1])
		return
	}

	catalog := db.DefaultCatalog()
	switch {
	case len(args) == 0:
	case args[0] == "import" && len(args) == 2:
		fmt.Printf("Reading XLSX file: %s\n", args[1])
		imported, err := importCatalog(args[1])
		if err != nil {
			log.Fatal("Failed to read XLSX: ", err)
		}
		catalog = imported
	default:
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Printf("Seeding %d categories and %d products\n", len(catalog.Categories), len(catalog.Products))
	result, err := db.SeedCatalog(db.GetDB(), catalog)
	if err != nil {
		log.Fatal("Failed to seed catalog: ", err)
	}

	fmt.Println("Seed completed successfully!")
	fmt.Printf("Categories created: %d\n", result.CategoriesCreated)
	fmt.Printf("Products created: %d (skipped %d existing)\n", result.ProductsCreated, result.ProductsSkipped)
}

func importCatalog(path string) (db.CatalogSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return db.CatalogSeed{}, err
	}
	defer f.Close()
	return db.ReadCatalogXLSX(f)
}

func exportCatalog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := db.WriteCatalogXLSX(f, db.DefaultCatalog()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
