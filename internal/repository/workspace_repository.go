package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

type WorkspaceRepositoryInterface interface {
	CreateWithOwner(ctx context.Context, workspace *model.Workspace, ownerID uuid.UUID) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	Update(ctx context.Context, workspace *model.Workspace) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error)
	AddUser(ctx context.Context, workspaceID, userID uuid.UUID, role string) error
	ListUsers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceUser, error)
	ListAvailableUsers(ctx context.Context, workspaceID, orgID uuid.UUID) ([]model.User, error)
	TagValues(ctx context.Context, workspaceID uuid.UUID) ([]datatypes.JSON, error)
}

var _ WorkspaceRepositoryInterface = (*WorkspaceRepository)(nil)

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// CreateWithOwner creates the workspace and its OWNER membership atomically.
func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *model.Workspace, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		return tx.Create(&model.WorkspaceUser{
			UserID:      ownerID,
			WorkspaceID: workspace.ID,
			Role:        model.RoleOwner,
		}).Error
	})
}

func (r *WorkspaceRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_users ON workspace_users.workspace_id = workspaces.id").
		Where("workspace_users.user_id = ?", userID).
		Preload("Boards", "is_archived = ?", false).
		Order("workspaces.created_at DESC").
		Find(&workspaces).Error
	return workspaces, err
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var workspace model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Boards", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_archived = ?", false).Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&workspace).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &workspace, err
}

func (r *WorkspaceRepository) Update(ctx context.Context, workspace *model.Workspace) error {
	return r.db.WithContext(ctx).Save(workspace).Error
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Workspace{}, "id = ?", id).Error
}

// GetRole returns the caller's workspace role, or "" when there is no
// membership row. Callers translate "" into NotFound or Forbidden.
func (r *WorkspaceRepository) GetRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error) {
	var member model.WorkspaceUser
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *WorkspaceRepository) AddUser(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	member := model.WorkspaceUser{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *WorkspaceRepository) ListUsers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceUser, error) {
	var members []model.WorkspaceUser
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&members).Error
	return members, err
}

// ListAvailableUsers returns organization members not yet in the workspace.
func (r *WorkspaceRepository) ListAvailableUsers(ctx context.Context, workspaceID, orgID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_users ON organization_users.user_id = users.id").
		Where("organization_users.organization_id = ?", orgID).
		Where("users.id NOT IN (?)", r.db.Model(&model.WorkspaceUser{}).
			Select("user_id").
			Where("workspace_id = ?", workspaceID)).
		Find(&users).Error
	return users, err
}

// TagValues returns the raw JSON payloads of every TAGS-typed column value
// across the workspace's boards. Aggregation happens in MergeTagValues; this
// is a computed view, recomputed on every call.
func (r *WorkspaceRepository) TagValues(ctx context.Context, workspaceID uuid.UUID) ([]datatypes.JSON, error) {
	var values []datatypes.JSON
	err := r.db.WithContext(ctx).
		Table("item_values").
		Joins("JOIN board_columns ON board_columns.id = item_values.column_id").
		Joins("JOIN boards ON boards.id = board_columns.board_id").
		Where("board_columns.type = ? AND boards.workspace_id = ?", model.ColumnTypeTags, workspaceID).
		Pluck("item_values.value", &values).Error
	return values, err
}
