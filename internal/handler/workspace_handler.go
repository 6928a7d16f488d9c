package handler

import (
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WorkspaceHandler struct {
	workspaceRepo repository.WorkspaceRepositoryInterface
	orgRepo       repository.OrganizationRepositoryInterface
}

func NewWorkspaceHandler(
	workspaceRepo repository.WorkspaceRepositoryInterface,
	orgRepo repository.OrganizationRepositoryInterface,
) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceRepo: workspaceRepo, orgRepo: orgRepo}
}

type CreateWorkspaceRequest struct {
	Name           string    `json:"name" binding:"required"`
	Description    *string   `json:"description"`
	Color          string    `json:"color"`
	OrganizationID uuid.UUID `json:"organizationId" binding:"required"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type AddWorkspaceUserRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Role   string    `json:"role" binding:"required,oneof=OWNER ADMIN MEMBER VIEWER"`
}

// GetAll lists the workspaces the caller belongs to, newest first.
//
// @Summary  List my workspaces
// @Tags     Workspaces
// @Produce  json
// @Success  200 {array} model.Workspace
// @Security BearerAuth
// @Router   /workspaces [get]
func (h *WorkspaceHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	workspaces, err := h.workspaceRepo.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, workspaces)
}

// GetByID returns one workspace. Non-members get the same NotFound as a
// missing id, so the response never confirms a workspace exists.
func (h *WorkspaceHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	workspace, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	if workspace == nil {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}
	respondOK(c, workspace)
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	orgRole, err := h.orgRepo.GetRole(c.Request.Context(), req.OrganizationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if orgRole == "" {
		respondError(c, apperr.Forbidden("You do not belong to this organization"))
		return
	}

	workspace := &model.Workspace{
		Name:           req.Name,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
	}
	if req.Color != "" {
		workspace.Color = req.Color
	}
	if err := h.workspaceRepo.CreateWithOwner(c.Request.Context(), workspace, userID); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, workspace)
}

// Update requires a managing role. Unlike reads, the failure here is an
// explicit Forbidden: the caller already proved membership to get this far.
func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}
	if !model.CanManageWorkspace(role) {
		respondError(c, apperr.Forbidden("You do not have permission to update this workspace"))
		return
	}

	workspace, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	if workspace == nil {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	if req.Name != nil {
		workspace.Name = *req.Name
	}
	if req.Description != nil {
		workspace.Description = req.Description
	}
	if req.Color != nil {
		workspace.Color = *req.Color
	}
	if err := h.workspaceRepo.Update(c.Request.Context(), workspace); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, workspace)
}

// Delete is owner-only. Cascades take boards, groups, items and memberships.
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role != model.RoleOwner {
		respondError(c, apperr.Forbidden("Only the workspace owner can delete it"))
		return
	}

	if err := h.workspaceRepo.Delete(c.Request.Context(), workspaceID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Workspace deleted successfully")
}

type WorkspaceMemberResponse struct {
	ID       uuid.UUID         `json:"id"`
	Role     string            `json:"role"`
	JoinedAt time.Time         `json:"joinedAt"`
	User     model.UserSummary `json:"user"`
}

func (h *WorkspaceHandler) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	members, err := h.workspaceRepo.ListUsers(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]WorkspaceMemberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, WorkspaceMemberResponse{
			ID:       member.ID,
			Role:     member.Role,
			JoinedAt: member.CreatedAt,
			User:     member.User.Summary(),
		})
	}
	respondOK(c, response)
}

// AvailableUsers lists organization members who could still be invited.
func (h *WorkspaceHandler) AvailableUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	workspace, err := h.workspaceRepo.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	if workspace == nil {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	users, err := h.workspaceRepo.ListAvailableUsers(c.Request.Context(), workspaceID, workspace.OrganizationID)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	respondOK(c, summaries)
}

func (h *WorkspaceHandler) AddUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddWorkspaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !model.CanManageWorkspace(role) {
		respondError(c, apperr.Forbidden("You do not have permission to manage workspace members"))
		return
	}

	if err := h.workspaceRepo.AddUser(c.Request.Context(), workspaceID, req.UserID, req.Role); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"message": "User added to workspace"})
}

// Tags aggregates every tag used across the workspace's boards into one
// deduplicated, sorted list.
func (h *WorkspaceHandler) Tags(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workspaceID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), workspaceID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if role == "" {
		respondError(c, apperr.NotFound("Workspace not found"))
		return
	}

	values, err := h.workspaceRepo.TagValues(c.Request.Context(), workspaceID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, repository.MergeTagValues(values))
}
