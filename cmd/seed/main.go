package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/sipit-backend/config"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/seed [-yes] <xlsx_file_path>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	sheet, err := readSeedSheet(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Cafes to import: %d, menu items: %d, skipped rows: %d\n", len(sheet.Cafes), len(sheet.MenuItems), sheet.Skipped)

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	gdb, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	importer := &seedImporter{
		cafes: repository.NewCafeRepository(gdb),
		users: repository.NewUserRepository(gdb),
		menus: repository.NewMenuRepository(gdb),
	}
	result, err := importer.Import(context.Background(), sheet)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Cafes upserted: %d, menu items created: %d, menu rows for unknown users: %d\n",
		result.Cafes, result.MenuItems, result.UnknownUsers)
}
