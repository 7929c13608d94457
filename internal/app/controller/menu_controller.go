package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MenuController struct {
	menuService service.MenuService
}

func NewMenuController(menuService service.MenuService) *MenuController {
	return &MenuController{
		menuService: menuService,
	}
}

type CreateMenuItemRequest struct {
	CafePlaceID string   `json:"cafe_place_id" binding:"required"`
	CafeName    string   `json:"cafe_name" binding:"required,max=200"`
	ItemName    string   `json:"item_name" binding:"required,max=200"`
	ItemType    string   `json:"item_type" binding:"required,oneof=food drink"`
	Rating      float64  `json:"rating" binding:"required,min=1,max=5"`
	Photos      []string `json:"photos" binding:"omitempty,max=10,dive,url"`
	Notes       *string  `json:"notes" binding:"omitempty,max=1000"`
}

type UpdateMenuItemRequest struct {
	ItemName *string  `json:"item_name" binding:"omitempty,min=1,max=200"`
	ItemType *string  `json:"item_type" binding:"omitempty,oneof=food drink"`
	Rating   *float64 `json:"rating" binding:"omitempty,min=1,max=5"`
	Photos   []string `json:"photos" binding:"omitempty,max=10,dive,url"`
	Notes    *string  `json:"notes" binding:"omitempty,max=1000"`
}

// ListForUser 사용자의 메뉴 기록 (카페별 그룹)
// @Summary 메뉴 기록 조회
// @Tags menu
// @Router /menu/users/{userId} [get]
func (ctrl *MenuController) ListForUser(c *gin.Context) {
	groups, err := ctrl.menuService.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, "fetch menu")
		return
	}

	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}

	respondData(c, http.StatusOK, gin.H{
		"menu":        groups,
		"total_items": total,
	})
}

// Create 메뉴 기록 추가
// @Summary 메뉴 기록 추가
// @Tags menu
// @Router /menu [post]
func (ctrl *MenuController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := ctrl.menuService.Create(c.Request.Context(), userID, service.CreateMenuItemInput{
		CafePlaceID: req.CafePlaceID,
		CafeName:    req.CafeName,
		ItemName:    req.ItemName,
		ItemType:    model.MenuItemType(req.ItemType),
		Rating:      req.Rating,
		Photos:      req.Photos,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err, "create menu item")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Menu item added",
		"data":    gin.H{"item": item},
	})
}

// Update 메뉴 기록 수정 (작성자만)
// @Summary 메뉴 기록 수정
// @Tags menu
// @Router /menu/{itemId} [put]
func (ctrl *MenuController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := service.UpdateMenuItemInput{
		ItemName: req.ItemName,
		Rating:   req.Rating,
		Photos:   req.Photos,
		Notes:    req.Notes,
	}
	if req.ItemType != nil {
		t := model.MenuItemType(*req.ItemType)
		input.ItemType = &t
	}

	item, err := ctrl.menuService.Update(c.Request.Context(), c.Param("itemId"), userID, input)
	if err != nil {
		respondError(c, err, "update menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Menu item updated",
		"data":    gin.H{"item": item},
	})
}

// Delete 메뉴 기록 삭제 (작성자만)
// @Summary 메뉴 기록 삭제
// @Tags menu
// @Router /menu/{itemId} [delete]
func (ctrl *MenuController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := ctrl.menuService.Delete(c.Request.Context(), c.Param("itemId"), userID); err != nil {
		respondError(c, err, "delete menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// Export 내 메뉴 기록 엑셀 다운로드
// @Summary 메뉴 기록 내보내기 (xlsx)
// @Tags menu
// @Router /menu/export [get]
func (ctrl *MenuController) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	data, err := ctrl.menuService.ExportXLSX(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "export menu")
		return
	}

	filename := "sipit-menu-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
