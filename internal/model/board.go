package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspaceId"`
	IsArchived  bool      `gorm:"not null;default:false" json:"isArchived"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Workspace Workspace     `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
	Columns   []BoardColumn `gorm:"foreignKey:BoardID" json:"columns,omitempty"`
	Groups    []ItemGroup   `gorm:"foreignKey:BoardID" json:"groups,omitempty"`
}

// BoardColumn is a typed field definition. Settings carries type-specific
// configuration (status labels, date format, number unit) as opaque JSON.
type BoardColumn struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"boardId"`
	Title     string         `gorm:"not null" json:"title"`
	Type      string         `gorm:"not null" json:"type"`
	Position  int            `gorm:"not null" json:"position"`
	Settings  datatypes.JSON `json:"settings"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

// Column types. The type is advisory: value shape is whatever the client
// stores, the server never validates it against the declared type.
const (
	ColumnTypeText     = "TEXT"
	ColumnTypeLongText = "LONG_TEXT"
	ColumnTypeNumber   = "NUMBER"
	ColumnTypeStatus   = "STATUS"
	ColumnTypeDate     = "DATE"
	ColumnTypePerson   = "PERSON"
	ColumnTypeCheckbox = "CHECKBOX"
	ColumnTypeLink     = "LINK"
	ColumnTypeEmail    = "EMAIL"
	ColumnTypePhone    = "PHONE"
	ColumnTypeRating   = "RATING"
	ColumnTypeTags     = "TAGS"
	ColumnTypeTimeline = "TIMELINE"
	ColumnTypeFile     = "FILE"
	ColumnTypeFormula  = "FORMULA"
)

type ItemGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index" json:"boardId"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"not null;default:'#579bfc'" json:"color"`
	Position  int       `gorm:"not null" json:"position"`
	Collapsed bool      `gorm:"not null;default:false" json:"collapsed"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Board Board  `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
	Items []Item `gorm:"foreignKey:GroupID" json:"items,omitempty"`
}
