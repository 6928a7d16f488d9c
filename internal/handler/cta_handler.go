package handler

import (
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtaHandler manages the call-to-action buttons attached to items.
type CtaHandler struct {
	ctaRepo       repository.CtaRepositoryInterface
	itemRepo      repository.ItemRepositoryInterface
	workspaceRepo repository.WorkspaceRepositoryInterface
}

func NewCtaHandler(
	ctaRepo repository.CtaRepositoryInterface,
	itemRepo repository.ItemRepositoryInterface,
	workspaceRepo repository.WorkspaceRepositoryInterface,
) *CtaHandler {
	return &CtaHandler{ctaRepo: ctaRepo, itemRepo: itemRepo, workspaceRepo: workspaceRepo}
}

type CreateCtaRequest struct {
	ItemID uuid.UUID `json:"itemId" binding:"required"`
	Label  string    `json:"label" binding:"required"`
	URL    *string   `json:"url"`
	Type   string    `json:"type" binding:"omitempty,oneof=LINK BUTTON ACTION"`
	Color  *string   `json:"color"`
}

type UpdateCtaRequest struct {
	Label *string `json:"label"`
	URL   *string `json:"url"`
	Type  *string `json:"type" binding:"omitempty,oneof=LINK BUTTON ACTION"`
	Color *string `json:"color"`
}

type ReorderCtasRequest struct {
	CtaIDs []uuid.UUID `json:"ctaIds" binding:"required"`
}

// checkItemAccess verifies the item exists and the caller is a member of its
// workspace; both failures present as the same NotFound.
func (h *CtaHandler) checkItemAccess(c *gin.Context, itemID, userID uuid.UUID) bool {
	scope, err := h.itemRepo.GetScope(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if scope == nil {
		respondError(c, apperr.NotFound("Item not found"))
		return false
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), scope.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if role == "" {
		respondError(c, apperr.NotFound("Item not found"))
		return false
	}
	return true
}

// checkCtaAccess resolves the CTA's ancestry and checks membership the same
// way, conflating missing CTA and missing membership.
func (h *CtaHandler) checkCtaAccess(c *gin.Context, ctaID, userID uuid.UUID) bool {
	scope, err := h.ctaRepo.GetScope(c.Request.Context(), ctaID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if scope == nil {
		respondError(c, apperr.NotFound("CTA not found"))
		return false
	}

	role, err := h.workspaceRepo.GetRole(c.Request.Context(), scope.WorkspaceID, userID)
	if err != nil {
		respondError(c, err)
		return false
	}
	if role == "" {
		respondError(c, apperr.NotFound("CTA not found"))
		return false
	}
	return true
}

func (h *CtaHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	if !h.checkItemAccess(c, itemID, userID) {
		return
	}

	ctas, err := h.ctaRepo.ListByItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ctas)
}

// Create appends a CTA at the end of the item's list. Type defaults to LINK.
func (h *CtaHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateCtaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if !h.checkItemAccess(c, req.ItemID, userID) {
		return
	}

	position, err := h.ctaRepo.NextPosition(c.Request.Context(), req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	cta := &model.ItemCta{
		ItemID:   req.ItemID,
		Label:    req.Label,
		URL:      req.URL,
		Type:     model.CtaTypeLink,
		Color:    req.Color,
		Position: position,
	}
	if req.Type != "" {
		cta.Type = req.Type
	}
	if err := h.ctaRepo.Create(c.Request.Context(), cta); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, cta)
}

func (h *CtaHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctaID, ok := parseIDParam(c, "ctaId")
	if !ok {
		return
	}

	var req UpdateCtaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if !h.checkCtaAccess(c, ctaID, userID) {
		return
	}

	cta, err := h.ctaRepo.GetByID(c.Request.Context(), ctaID)
	if err != nil {
		respondError(c, err)
		return
	}
	if cta == nil {
		respondError(c, apperr.NotFound("CTA not found"))
		return
	}

	if req.Label != nil {
		cta.Label = *req.Label
	}
	if req.URL != nil {
		cta.URL = req.URL
	}
	if req.Type != nil {
		cta.Type = *req.Type
	}
	if req.Color != nil {
		cta.Color = req.Color
	}
	if err := h.ctaRepo.Update(c.Request.Context(), cta); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, cta)
}

func (h *CtaHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	ctaID, ok := parseIDParam(c, "ctaId")
	if !ok {
		return
	}

	if !h.checkCtaAccess(c, ctaID, userID) {
		return
	}

	if err := h.ctaRepo.Delete(c.Request.Context(), ctaID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "CTA deleted successfully")
}

// Reorder rewrites the item's CTA positions to match the given id order and
// returns the list in its new order.
func (h *CtaHandler) Reorder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req ReorderCtasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	if !h.checkItemAccess(c, itemID, userID) {
		return
	}

	if err := h.ctaRepo.Reorder(c.Request.Context(), itemID, req.CtaIDs); err != nil {
		respondError(c, err)
		return
	}

	ctas, err := h.ctaRepo.ListByItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ctas)
}
