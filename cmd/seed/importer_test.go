package main

import (
	"context"
	"testing"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/ikkim/sipit-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, withMenu bool) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	require.NoError(t, f.SetSheetName("Sheet1", cafeSheet))
	rows := [][]interface{}{
		{"Place ID", "Name", "Address", "Latitude", "Longitude", "Photos"},
		{"p1", "Blue Bottle", "Seoul", "37.5", "127.0", "https://a.example/1.jpg, https://a.example/2.jpg"},
		{"p2", "Fritz", "Mapo", "37.55", "126.9"},
		{"p1", "Duplicate", "Seoul", "37.5", "127.0"},
		{"", "No ID", "Seoul", "37.5", "127.0"},
		{"p3", "Bad Lat", "Seoul", "137.5", "127.0"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(cafeSheet, cell, &row))
	}

	if withMenu {
		_, err := f.NewSheet(menuSheet)
		require.NoError(t, err)
		menu := [][]interface{}{
			{"User Email", "Place ID", "Cafe Name", "Item", "Type", "Rating", "Notes"},
			{"Owner@Example.com", "p1", "Blue Bottle", "Latte", "Drink", "4.5", "oat milk"},
			{"ghost@example.com", "p2", "Fritz", "Croissant", "food", "4"},
			{"owner@example.com", "p2", "Fritz", "Tea", "beverage", "3"},
		}
		for i, row := range menu {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(menuSheet, cell, &row))
		}
	}
	return f
}

func TestReadSeedSheet(t *testing.T) {
	sheet, err := readSeedSheet(buildWorkbook(t, true))
	require.NoError(t, err)

	require.Len(t, sheet.Cafes, 2)
	assert.Equal(t, "p1", sheet.Cafes[0].ExternalID)
	assert.Equal(t, []string{"https://a.example/1.jpg", "https://a.example/2.jpg"}, sheet.Cafes[0].Photos)
	assert.Empty(t, sheet.Cafes[1].Photos)

	require.Len(t, sheet.MenuItems, 2)
	assert.Equal(t, "owner@example.com", sheet.MenuItems[0].UserEmail)
	assert.Equal(t, model.MenuItemDrink, sheet.MenuItems[0].Item.ItemType)
	require.NotNil(t, sheet.MenuItems[0].Item.Notes)
	assert.Equal(t, "oat milk", *sheet.MenuItems[0].Item.Notes)

	// duplicate, missing id, bad latitude, invalid menu type
	assert.Equal(t, 4, sheet.Skipped)
}

func TestReadSeedSheet_Empty(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := readSeedSheet(f)
	assert.Error(t, err)
}

func TestSeedImporter_Import(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	owner := &model.User{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, gdb.Create(owner).Error)

	sheet, err := readSeedSheet(buildWorkbook(t, true))
	require.NoError(t, err)

	importer := &seedImporter{
		cafes: repository.NewCafeRepository(gdb),
		users: repository.NewUserRepository(gdb),
		menus: repository.NewMenuRepository(gdb),
	}
	ctx := context.Background()

	result, err := importer.Import(ctx, sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Cafes)
	assert.Equal(t, 1, result.MenuItems)
	assert.Equal(t, 1, result.UnknownUsers)

	// re-running upserts cafes in place
	_, err = importer.Import(ctx, &seedSheet{Cafes: sheet.Cafes})
	require.NoError(t, err)

	var cafes int64
	require.NoError(t, gdb.Model(&model.Cafe{}).Count(&cafes).Error)
	assert.Equal(t, int64(2), cafes)

	var items []model.PersonalMenuItem
	require.NoError(t, gdb.Where("user_id = ?", owner.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "Latte", items[0].ItemName)
}
