package handler

import (
	"encoding/json"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BoardHandler struct {
	boardRepo     repository.BoardRepositoryInterface
	workspaceRepo repository.WorkspaceRepositoryInterface
}

func NewBoardHandler(
	boardRepo repository.BoardRepositoryInterface,
	workspaceRepo repository.WorkspaceRepositoryInterface,
) *BoardHandler {
	return &BoardHandler{boardRepo: boardRepo, workspaceRepo: workspaceRepo}
}

type CreateBoardRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description"`
	WorkspaceID uuid.UUID `json:"workspaceId" binding:"required"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsArchived  *bool   `json:"isArchived"`
}

type CreateColumnRequest struct {
	BoardID  uuid.UUID       `json:"boardId" binding:"required"`
	Title    string          `json:"title" binding:"required"`
	Type     string          `json:"type" binding:"required,oneof=TEXT LONG_TEXT NUMBER STATUS DATE PERSON CHECKBOX LINK EMAIL PHONE RATING TAGS TIMELINE FILE FORMULA"`
	Position *int            `json:"position"`
	Settings json.RawMessage `json:"settings"`
}

type CreateGroupRequest struct {
	BoardID  uuid.UUID `json:"boardId" binding:"required"`
	Name     string    `json:"name" binding:"required"`
	Color    string    `json:"color"`
	Position *int      `json:"position"`
}

// memberRole resolves the caller's role in the board's workspace. A missing
// membership comes back as "" and the caller decides how to present it.
func (h *BoardHandler) memberRole(c *gin.Context, workspaceID, userID uuid.UUID) (string, error) {
	return h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
}

// Create makes a board with its starter group. Requires workspace membership;
// since the caller names the workspace explicitly, the failure is Forbidden
// rather than a conflated NotFound.
//
// @Summary  Create a board
// @Tags     Boards
// @Accept   json
// @Produce  json
// @Param    request body CreateBoardRequest true "Board data"
// @Success  201 {object} model.Board
// @Security BearerAuth
// @Router   /boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	role, err := h.memberRole(c, req.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.Forbidden("You do not have access to this workspace"))
		return
	}

	board := &model.Board{
		Name:        req.Name,
		Description: req.Description,
		WorkspaceID: req.WorkspaceID,
	}
	if err := h.boardRepo.CreateWithDefaultGroup(c.Request.Context(), board); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, board)
}

// Get returns the full board aggregate: columns, groups, and items with
// values, assignees and creators, all ordered by position.
func (h *BoardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetAggregate(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	role, err := h.memberRole(c, board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}
	respondOK(c, board)
}

func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	role, err := h.memberRole(c, board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.Description != nil {
		board.Description = req.Description
	}
	if req.IsArchived != nil {
		board.IsArchived = *req.IsArchived
	}
	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, board)
}

// Delete requires a managing workspace role; members who can see the board
// but not delete it get Forbidden, not NotFound.
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	role, err := h.memberRole(c, board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !model.CanManageWorkspace(role) {
		respondError(c, apperr.Forbidden("You do not have permission to delete this board"))
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), boardID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Board deleted successfully")
}

func (h *BoardHandler) CreateColumn(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), req.BoardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	role, err := h.memberRole(c, board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	position, err := resolvePosition(req.Position, func() (int, error) {
		return h.boardRepo.NextColumnPosition(c.Request.Context(), req.BoardID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	column := &model.BoardColumn{
		BoardID:  req.BoardID,
		Title:    req.Title,
		Type:     req.Type,
		Position: position,
	}
	if len(req.Settings) > 0 {
		column.Settings = datatypes.JSON(req.Settings)
	}
	if err := h.boardRepo.CreateColumn(c.Request.Context(), column); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, column)
}

func (h *BoardHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), req.BoardID)
	if err != nil {
		respondError(c, err)
		return
	}
	if board == nil {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	role, err := h.memberRole(c, board.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Board not found"))
		return
	}

	position, err := resolvePosition(req.Position, func() (int, error) {
		return h.boardRepo.NextGroupPosition(c.Request.Context(), req.BoardID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	group := &model.ItemGroup{
		BoardID:  req.BoardID,
		Name:     req.Name,
		Position: position,
	}
	if req.Color != "" {
		group.Color = req.Color
	}
	if err := h.boardRepo.CreateGroup(c.Request.Context(), group); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, group)
}

// resolvePosition honors an explicit position and otherwise appends.
func resolvePosition(explicit *int, next func() (int, error)) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return next()
}
