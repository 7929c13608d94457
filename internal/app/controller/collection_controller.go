package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/service"
)

// CollectionController 저장한 카페 / 방문한 카페
type CollectionController struct {
	collectionService service.CollectionService
}

func NewCollectionController(collectionService service.CollectionService) *CollectionController {
	return &CollectionController{
		collectionService: collectionService,
	}
}

// @Router /saved-cafes [get]
func (ctrl *CollectionController) ListSaved(c *gin.Context) {
	ctrl.list(c, ctrl.collectionService.ListSaved, "fetch saved cafes")
}

// @Router /saved-cafes/{placeId} [post]
func (ctrl *CollectionController) Save(c *gin.Context) {
	ctrl.mutate(c, ctrl.collectionService.Save, http.StatusCreated, "Cafe saved", "save cafe")
}

// @Router /saved-cafes/{placeId} [delete]
func (ctrl *CollectionController) Unsave(c *gin.Context) {
	ctrl.mutate(c, ctrl.collectionService.Unsave, http.StatusOK, "Cafe removed from saved list", "unsave cafe")
}

// @Router /saved-cafes/{placeId}/status [get]
func (ctrl *CollectionController) SavedStatus(c *gin.Context) {
	ctrl.status(c, ctrl.collectionService.IsSaved, "is_saved")
}

// @Router /visited-cafes [get]
func (ctrl *CollectionController) ListVisited(c *gin.Context) {
	ctrl.list(c, ctrl.collectionService.ListVisited, "fetch visited cafes")
}

// @Router /visited-cafes/{placeId} [post]
func (ctrl *CollectionController) MarkVisited(c *gin.Context) {
	ctrl.mutate(c, ctrl.collectionService.MarkVisited, http.StatusCreated, "Cafe marked as visited", "mark cafe as visited")
}

// @Router /visited-cafes/{placeId} [delete]
func (ctrl *CollectionController) UnmarkVisited(c *gin.Context) {
	ctrl.mutate(c, ctrl.collectionService.UnmarkVisited, http.StatusOK, "Cafe removed from visited list", "unmark visited cafe")
}

// @Router /visited-cafes/{placeId}/status [get]
func (ctrl *CollectionController) VisitedStatus(c *gin.Context) {
	ctrl.status(c, ctrl.collectionService.IsVisited, "is_visited")
}

type listFunc func(ctx context.Context, userID string) ([]service.CollectedCafe, error)

func (ctrl *CollectionController) list(c *gin.Context, fn listFunc, action string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cafes, err := fn(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, action)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"cafes": cafes,
		"count": len(cafes),
	})
}

func (ctrl *CollectionController) mutate(c *gin.Context, fn func(ctx context.Context, userID, placeID string) error, status int, message, action string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), userID, c.Param("placeId")); err != nil {
		respondError(c, err, action)
		return
	}

	c.JSON(status, gin.H{"message": message})
}

func (ctrl *CollectionController) status(c *gin.Context, fn func(ctx context.Context, userID, placeID string) (bool, error), key string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	flag, err := fn(c.Request.Context(), userID, c.Param("placeId"))
	if err != nil {
		respondError(c, err, "check cafe status")
		return
	}

	respondData(c, http.StatusOK, gin.H{key: flag})
}
