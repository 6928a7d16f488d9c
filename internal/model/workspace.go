package model

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    *string   `json:"description"`
	Color          string    `gorm:"not null;default:'#579bfc'" json:"color"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organizationId"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	Boards       []Board      `gorm:"foreignKey:WorkspaceID" json:"boards,omitempty"`
}

// WorkspaceUser is the membership row gating all access to a workspace
// and everything below it.
type WorkspaceUser struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"userId"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user" json:"workspaceId"`
	Role        string    `gorm:"not null;check:role IN ('OWNER', 'ADMIN', 'MEMBER', 'VIEWER')" json:"role"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`

	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
}

// Workspace-level roles
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleViewer = "VIEWER"
)

// CanManageWorkspace reports whether role may update the workspace,
// delete boards in it, or manage its members.
func CanManageWorkspace(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}
