package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// 시트 이름 (메뉴 시트는 선택)
const (
	cafeSheet = "Cafes"
	menuSheet = "Menu"
)

// cafes: Place ID | Name | Address | Latitude | Longitude | Photos (comma separated)
// menu:  User Email | Place ID | Cafe Name | Item | Type | Rating | Notes
const (
	cafeColumns = 5
	menuColumns = 6
)

type seedMenuItem struct {
	UserEmail string
	Item      model.PersonalMenuItem
}

type seedSheet struct {
	Cafes     []repository.CatalogRecord
	MenuItems []seedMenuItem
	Skipped   int
}

// readSeedSheet reads the cafe sheet (or the first sheet when none is named Cafes)
// and the optional menu sheet. Header rows are skipped.
func readSeedSheet(f *excelize.File) (*seedSheet, error) {
	name := cafeSheet
	if idx, _ := f.GetSheetIndex(cafeSheet); idx < 0 {
		name = f.GetSheetName(0)
	}
	if name == "" {
		return nil, errors.New("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data found in XLSX file")
	}

	out := &seedSheet{}
	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		record, ok := parseCafeRow(row)
		if !ok || seen[record.ExternalID] {
			out.Skipped++
			continue
		}
		seen[record.ExternalID] = true
		out.Cafes = append(out.Cafes, record)
	}

	if idx, _ := f.GetSheetIndex(menuSheet); idx >= 0 {
		rows, err := f.GetRows(menuSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read menu rows: %w", err)
		}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			item, ok := parseMenuRow(row)
			if !ok {
				out.Skipped++
				continue
			}
			out.MenuItems = append(out.MenuItems, item)
		}
	}

	return out, nil
}

func parseCafeRow(row []string) (repository.CatalogRecord, bool) {
	if len(row) < cafeColumns {
		return repository.CatalogRecord{}, false
	}
	placeID := strings.TrimSpace(row[0])
	name := strings.TrimSpace(row[1])
	if placeID == "" || name == "" {
		return repository.CatalogRecord{}, false
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return repository.CatalogRecord{}, false
	}

	record := repository.CatalogRecord{
		ExternalID: placeID,
		Name:       name,
		Address:    strings.TrimSpace(row[2]),
		Latitude:   lat,
		Longitude:  lng,
	}
	if len(row) > cafeColumns {
		for _, url := range strings.Split(row[5], ",") {
			if url = strings.TrimSpace(url); url != "" {
				record.Photos = append(record.Photos, url)
			}
		}
	}
	return record, true
}

func parseMenuRow(row []string) (seedMenuItem, bool) {
	if len(row) < menuColumns {
		return seedMenuItem{}, false
	}
	itemType := model.MenuItemType(strings.ToLower(strings.TrimSpace(row[4])))
	rating, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil || rating < 1 || rating > 5 || !itemType.IsValid() {
		return seedMenuItem{}, false
	}

	item := seedMenuItem{
		UserEmail: strings.ToLower(strings.TrimSpace(row[0])),
		Item: model.PersonalMenuItem{
			CafePlaceID: strings.TrimSpace(row[1]),
			CafeName:    strings.TrimSpace(row[2]),
			ItemName:    strings.TrimSpace(row[3]),
			ItemType:    itemType,
			Rating:      rating,
		},
	}
	if item.UserEmail == "" || item.Item.CafePlaceID == "" || item.Item.ItemName == "" {
		return seedMenuItem{}, false
	}
	if len(row) > menuColumns {
		if notes := strings.TrimSpace(row[6]); notes != "" {
			item.Item.Notes = &notes
		}
	}
	return item, true
}

type importResult struct {
	Cafes        int
	MenuItems    int
	UnknownUsers int
}

type seedImporter struct {
	cafes repository.CafeRepository
	users repository.UserRepository
	menus repository.MenuRepository
}

// Import upserts every cafe, then attaches menu items to existing users
func (s *seedImporter) Import(ctx context.Context, sheet *seedSheet) (*importResult, error) {
	result := &importResult{}
	for _, record := range sheet.Cafes {
		if _, err := s.cafes.UpsertFromCatalogRecord(ctx, record); err != nil {
			return result, fmt.Errorf("cafe %s: %w", record.ExternalID, err)
		}
		result.Cafes++
	}

	userIDs := make(map[string]string)
	for _, row := range sheet.MenuItems {
		userID, ok := userIDs[row.UserEmail]
		if !ok {
			user, err := s.users.FindByEmail(ctx, row.UserEmail)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return result, fmt.Errorf("user %s: %w", row.UserEmail, err)
			}
			if user != nil {
				userID = user.ID
			}
			userIDs[row.UserEmail] = userID
		}
		if userID == "" {
			result.UnknownUsers++
			continue
		}

		item := row.Item
		item.UserID = userID
		if err := s.menus.Create(ctx, &item); err != nil {
			return result, fmt.Errorf("menu item %s: %w", item.ItemName, err)
		}
		result.MenuItems++
	}
	return result, nil
}
