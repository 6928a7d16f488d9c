package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Item struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"groupId"`
	Name        string     `gorm:"not null" json:"name"`
	Position    int        `gorm:"not null" json:"position"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null" json:"createdById"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updatedById"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Group     ItemGroup      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Creator   User           `gorm:"foreignKey:CreatedByID" json:"-"`
	Values    []ItemValue    `gorm:"foreignKey:ItemID" json:"values,omitempty"`
	Assignees []ItemAssignee `gorm:"foreignKey:ItemID" json:"assignees,omitempty"`
	Ctas      []ItemCta      `gorm:"foreignKey:ItemID" json:"ctas,omitempty"`
}

// ItemValue holds the JSON payload for one (item, column) cell. The pair is
// unique; writes are upserts, never duplicates.
type ItemValue struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_item_column" json:"itemId"`
	ColumnID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_item_column" json:"columnId"`
	Value     datatypes.JSON `json:"value"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`

	Item   Item        `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
	Column BoardColumn `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"-"`
}

type ItemAssignee struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_assignee" json:"itemId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_assignee" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Item Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

// ItemActivity is an append-only log entry. Rows are never updated; they are
// removed only by the cascade when their item is deleted.
type ItemActivity struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"itemId"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null" json:"userId"`
	Action      string         `gorm:"not null" json:"action"`
	Field       *string        `json:"field"`
	OldValue    datatypes.JSON `json:"oldValue"`
	NewValue    datatypes.JSON `json:"newValue"`
	Description *string        `json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`

	Item Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Activity actions
const (
	ActivityCreated         = "CREATED"
	ActivityFieldChanged    = "FIELD_CHANGED"
	ActivityAssigneeAdded   = "ASSIGNEE_ADDED"
	ActivityAssigneeRemoved = "ASSIGNEE_REMOVED"
)

type ItemCta struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"itemId"`
	Label     string    `gorm:"not null" json:"label"`
	URL       *string   `json:"url"`
	Type      string    `gorm:"not null;default:'LINK';check:type IN ('LINK', 'BUTTON', 'ACTION')" json:"type"`
	Color     *string   `json:"color"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Item Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
}

// CTA types
const (
	CtaTypeLink   = "LINK"
	CtaTypeButton = "BUTTON"
	CtaTypeAction = "ACTION"
)
