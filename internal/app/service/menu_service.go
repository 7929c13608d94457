package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/repository"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const menuExportSheet = "My Menu"

var menuExportHeaders = []string{"Cafe", "Place ID", "Item", "Type", "Rating", "Notes", "Created At"}

type CreateMenuItemInput struct {
	CafePlaceID string
	CafeName    string
	ItemName    string
	ItemType    model.MenuItemType
	Rating      float64
	Photos      []string
	Notes       *string
}

// UpdateMenuItemInput nil 필드는 변경하지 않음
type UpdateMenuItemInput struct {
	ItemName *string
	ItemType *model.MenuItemType
	Rating   *float64
	Photos   []string
	Notes    *string
}

// MenuGroup 카페별로 묶은 메뉴 기록
type MenuGroup struct {
	CafePlaceID string                   `json:"cafe_place_id"`
	CafeName    string                   `json:"cafe_name"`
	Items       []model.PersonalMenuItem `json:"items"`
}

type MenuService interface {
	ListForUser(ctx context.Context, userID string) ([]MenuGroup, error)
	Create(ctx context.Context, userID string, input CreateMenuItemInput) (*model.PersonalMenuItem, error)
	Update(ctx context.Context, itemID, userID string, input UpdateMenuItemInput) (*model.PersonalMenuItem, error)
	Delete(ctx context.Context, itemID, userID string) error
	ExportXLSX(ctx context.Context, userID string) ([]byte, error)
}

type menuService struct {
	menuRepo repository.MenuRepository
}

func NewMenuService(menuRepo repository.MenuRepository) MenuService {
	return &menuService{menuRepo: menuRepo}
}

// ListForUser 카페 단위 그룹 (최근 기록이 있는 카페 순, 그룹 내 최신순)
func (s *menuService) ListForUser(ctx context.Context, userID string) ([]MenuGroup, error) {
	items, err := s.menuRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]MenuGroup, 0)
	for _, item := range items {
		i, ok := index[item.CafePlaceID]
		if !ok {
			i = len(groups)
			index[item.CafePlaceID] = i
			groups = append(groups, MenuGroup{CafePlaceID: item.CafePlaceID, CafeName: item.CafeName})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups, nil
}

func (s *menuService) Create(ctx context.Context, userID string, input CreateMenuItemInput) (*model.PersonalMenuItem, error) {
	if strings.TrimSpace(input.CafePlaceID) == "" || strings.TrimSpace(input.CafeName) == "" {
		return nil, validationError(apperrors.ValidationRequired, "Cafe place ID and name are required")
	}
	if strings.TrimSpace(input.ItemName) == "" {
		return nil, validationError(apperrors.ValidationRequired, "Item name is required")
	}
	if err := validateMenuFields(input.ItemType, input.Rating); err != nil {
		return nil, err
	}

	item := &model.PersonalMenuItem{
		UserID:      userID,
		CafePlaceID: input.CafePlaceID,
		CafeName:    input.CafeName,
		ItemName:    strings.TrimSpace(input.ItemName),
		ItemType:    input.ItemType,
		Rating:      input.Rating,
		Photos:      model.StringArray(input.Photos),
		Notes:       input.Notes,
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		logger.Error("Failed to create menu item", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Menu item created", map[string]interface{}{
		"item_id":       item.ID,
		"cafe_place_id": item.CafePlaceID,
	})
	return item, nil
}

func (s *menuService) Update(ctx context.Context, itemID, userID string, input UpdateMenuItemInput) (*model.PersonalMenuItem, error) {
	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	if input.ItemName != nil {
		name := strings.TrimSpace(*input.ItemName)
		if name == "" {
			return nil, validationError(apperrors.ValidationRequired, "Item name cannot be empty")
		}
		item.ItemName = name
	}
	if input.ItemType != nil {
		item.ItemType = *input.ItemType
	}
	if input.Rating != nil {
		item.Rating = *input.Rating
	}
	if err := validateMenuFields(item.ItemType, item.Rating); err != nil {
		return nil, err
	}
	if input.Photos != nil {
		item.Photos = model.StringArray(input.Photos)
	}
	if input.Notes != nil {
		item.Notes = input.Notes
	}

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *menuService) Delete(ctx context.Context, itemID, userID string) error {
	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return err
	}
	return s.menuRepo.Delete(ctx, item.ID)
}

// ExportXLSX 사용자 메뉴 기록을 엑셀 파일로 내보내기
func (s *menuService) ExportXLSX(ctx context.Context, userID string) ([]byte, error) {
	items, err := s.menuRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), menuExportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(menuExportSheet, "A1", &menuExportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		notes := ""
		if item.Notes != nil {
			notes = *item.Notes
		}
		row := []interface{}{
			item.CafeName,
			item.CafePlaceID,
			item.ItemName,
			string(item.ItemType),
			item.Rating,
			notes,
			item.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(menuExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Menu exported", map[string]interface{}{
		"user_id": userID,
		"items":   len(items),
	})
	return buf.Bytes(), nil
}

func (s *menuService) ownedItem(ctx context.Context, itemID, userID string) (*model.PersonalMenuItem, error) {
	item, err := s.menuRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrNotMenuItemOwner
	}
	return item, nil
}

func validateMenuFields(itemType model.MenuItemType, rating float64) error {
	if !itemType.IsValid() {
		return validationError(apperrors.ValidationInvalidInput, "Item type must be food or drink")
	}
	if rating < 1 || rating > 5 {
		return validationError(apperrors.ValidationInvalidRange, "Rating must be between 1 and 5")
	}
	return nil
}
