package handler

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultActivityLimit = 50

type ItemHandler struct {
	itemRepo      repository.ItemRepositoryInterface
	boardRepo     repository.BoardRepositoryInterface
	workspaceRepo repository.WorkspaceRepositoryInterface
	activityRepo  repository.ActivityRepositoryInterface
}

func NewItemHandler(
	itemRepo repository.ItemRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	workspaceRepo repository.WorkspaceRepositoryInterface,
	activityRepo repository.ActivityRepositoryInterface,
) *ItemHandler {
	return &ItemHandler{
		itemRepo:      itemRepo,
		boardRepo:     boardRepo,
		workspaceRepo: workspaceRepo,
		activityRepo:  activityRepo,
	}
}

type CreateItemRequest struct {
	GroupID uuid.UUID `json:"groupId" binding:"required"`
	Name    string    `json:"name" binding:"required"`
}

type UpdateItemRequest struct {
	Name *string `json:"name"`
}

type MoveItemRequest struct {
	GroupID  uuid.UUID `json:"groupId" binding:"required"`
	Position *int      `json:"position"`
}

type UpdateAssigneesRequest struct {
	UserIDs []uuid.UUID `json:"userIds"`
}

type UpdateValueRequest struct {
	Value json.RawMessage `json:"value"`
}

// recordActivity appends a log entry. Activity is best-effort: a failed
// write is logged and the request still succeeds.
func (h *ItemHandler) recordActivity(c *gin.Context, activity *model.ItemActivity) {
	if err := h.activityRepo.Log(c.Request.Context(), activity); err != nil {
		log.Printf("⚠️  Failed to record item activity: %v", err)
	}
}

// itemScope resolves the item's ancestry and checks the caller's workspace
// membership. Missing item and missing membership both surface as the same
// NotFound so responses never confirm an item exists.
func (h *ItemHandler) itemScope(c *gin.Context, itemID, userID uuid.UUID) (*repository.ItemScope, bool) {
	scope, err := h.itemRepo.GetScope(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if scope == nil {
		respondError(c, apperr.NotFound("Item not found"))
		return nil, false
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), scope.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if role == "" {
		respondError(c, apperr.NotFound("Item not found"))
		return nil, false
	}
	return scope, true
}

// Create appends a new item at the end of its group and records a CREATED
// activity entry.
//
// @Summary  Create an item
// @Tags     Items
// @Accept   json
// @Produce  json
// @Param    request body CreateItemRequest true "Item data"
// @Success  201 {object} model.Item
// @Security BearerAuth
// @Router   /boards/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	group, err := h.boardRepo.GetGroup(c.Request.Context(), req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if group == nil {
		respondError(c, apperr.NotFound("Group not found"))
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), group.BoardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Group not found"))
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Group not found"))
		return
	}

	position, err := h.itemRepo.NextPosition(c.Request.Context(), req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}

	item := &model.Item{
		GroupID:     req.GroupID,
		Name:        req.Name,
		Position:    position,
		CreatedByID: userID,
	}
	if err := h.itemRepo.Create(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}

	h.recordActivity(c, &model.ItemActivity{
		ItemID:   item.ID,
		UserID:   userID,
		Action:   model.ActivityCreated,
		NewValue: jsonValue(item.Name),
	})
	respondCreated(c, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	scope, ok := h.itemScope(c, itemID, userID)
	if !ok {
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		respondError(c, apperr.NotFound("Item not found"))
		return
	}

	renamed := req.Name != nil && *req.Name != scope.Name
	if renamed {
		item.Name = *req.Name
	}

	item.UpdatedByID = &userID
	if err := h.itemRepo.Update(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}

	// Logged only once the save has gone through, so the activity log never
	// describes a rename that was rolled back.
	if renamed {
		field := "name"
		h.recordActivity(c, &model.ItemActivity{
			ItemID:   itemID,
			UserID:   userID,
			Action:   model.ActivityFieldChanged,
			Field:    &field,
			OldValue: jsonValue(scope.Name),
			NewValue: jsonValue(item.Name),
		})
	}
	respondOK(c, item)
}

// Delete removes the item; values, assignees, CTAs and activity entries go
// with it through the cascade. A missing item and a missing membership both
// come back Forbidden here.
func (h *ItemHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	scope, err := h.itemRepo.GetScope(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	role := ""
	if scope != nil {
		role, err = h.workspaceRepo.GetRole(c.Request.Context(), scope.WorkspaceID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if role == "" {
		respondError(c, apperr.Forbidden("You do not have permission to delete this item"))
		return
	}

	if err := h.itemRepo.Delete(c.Request.Context(), itemID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Item deleted successfully")
}

// Move reparents the item within its board. Cross-board moves are rejected;
// an item's values are keyed to its board's columns and would dangle.
func (h *ItemHandler) Move(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	scope, ok := h.itemScope(c, itemID, userID)
	if !ok {
		return
	}

	target, err := h.boardRepo.GetGroup(c.Request.Context(), req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if target == nil || target.BoardID != scope.BoardID {
		respondError(c, apperr.BadRequest("Target group must be in the same board"))
		return
	}

	position, err := resolvePosition(req.Position, func() (int, error) {
		return h.itemRepo.NextPosition(c.Request.Context(), req.GroupID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.itemRepo.Move(c.Request.Context(), itemID, req.GroupID, position, userID); err != nil {
		respondError(c, err)
		return
	}

	item, err := h.itemRepo.GetByID(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// UpdateAssignees replaces the assignee set and records one activity entry
// per added and removed user.
func (h *ItemHandler) UpdateAssignees(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateAssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if _, ok := h.itemScope(c, itemID, userID); !ok {
		return
	}

	added, removed, err := h.itemRepo.ReplaceAssignees(c.Request.Context(), itemID, req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, addedID := range added {
		h.recordActivity(c, &model.ItemActivity{
			ItemID:   itemID,
			UserID:   userID,
			Action:   model.ActivityAssigneeAdded,
			NewValue: jsonValue(addedID),
		})
	}
	for _, removedID := range removed {
		h.recordActivity(c, &model.ItemActivity{
			ItemID:   itemID,
			UserID:   userID,
			Action:   model.ActivityAssigneeRemoved,
			OldValue: jsonValue(removedID),
		})
	}

	item, err := h.itemRepo.GetWithAssignees(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// UpdateValue upserts the JSON cell for (item, column). The payload is not
// validated against the column type; any JSON the client sends is stored.
func (h *ItemHandler) UpdateValue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	columnID, ok := parseIDParam(c, "columnId")
	if !ok {
		return
	}

	var req UpdateValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	scope, ok := h.itemScope(c, itemID, userID)
	if !ok {
		return
	}

	column, err := h.boardRepo.GetColumn(c.Request.Context(), columnID)
	if err != nil {
		respondError(c, err)
		return
	}
	if column == nil || column.BoardID != scope.BoardID {
		respondError(c, apperr.NotFound("Column not found"))
		return
	}

	previous, err := h.itemRepo.GetValue(c.Request.Context(), itemID, columnID)
	if err != nil {
		respondError(c, err)
		return
	}

	value := &model.ItemValue{
		ItemID:   itemID,
		ColumnID: columnID,
		Value:    datatypes.JSON(req.Value),
	}
	if err := h.itemRepo.UpsertValue(c.Request.Context(), value); err != nil {
		respondError(c, err)
		return
	}

	var oldValue datatypes.JSON
	if previous != nil {
		oldValue = previous.Value
	}
	h.recordActivity(c, &model.ItemActivity{
		ItemID:   itemID,
		UserID:   userID,
		Action:   model.ActivityFieldChanged,
		Field:    &column.Title,
		OldValue: oldValue,
		NewValue: datatypes.JSON(req.Value),
	})
	respondOK(c, value)
}

type ActivityResponse struct {
	ID          uuid.UUID         `json:"id"`
	Action      string            `json:"action"`
	Field       *string           `json:"field"`
	OldValue    datatypes.JSON    `json:"oldValue"`
	NewValue    datatypes.JSON    `json:"newValue"`
	Description *string           `json:"description"`
	CreatedAt   time.Time         `json:"createdAt"`
	User        model.UserSummary `json:"user"`
}

// Activities returns the item's activity log newest first, paginated by
// limit and offset query parameters.
func (h *ItemHandler) Activities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	if _, ok := h.itemScope(c, itemID, userID); !ok {
		return
	}

	limit := queryInt(c, "limit", defaultActivityLimit)
	offset := queryInt(c, "offset", 0)

	activities, err := h.activityRepo.ListByItem(c.Request.Context(), itemID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ActivityResponse, 0, len(activities))
	for i := range activities {
		activity := &activities[i]
		response = append(response, ActivityResponse{
			ID:          activity.ID,
			Action:      activity.Action,
			Field:       activity.Field,
			OldValue:    activity.OldValue,
			NewValue:    activity.NewValue,
			Description: activity.Description,
			CreatedAt:   activity.CreatedAt,
			User:        activity.User.Summary(),
		})
	}
	respondOK(c, response)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
