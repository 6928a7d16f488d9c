package repository

import (
	"context"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository appends and lists item activity entries. Rows are
// immutable once written; there is deliberately no update or delete here.
type ActivityRepository struct {
	db *gorm.DB
}

type ActivityRepositoryInterface interface {
	Log(ctx context.Context, activity *model.ItemActivity) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.ItemActivity, error)
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Log(ctx context.Context, activity *model.ItemActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByItem returns entries newest first. The acting user's display fields
// are joined live at read time, not snapshotted at write time, so renames
// show up retroactively.
func (r *ActivityRepository) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.ItemActivity, error) {
	var activities []model.ItemActivity
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	return activities, err
}
