package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository struct {
	db *gorm.DB
}

// ItemScope is the resolved ancestry of an item, fetched with one joined
// query instead of walking item -> group -> board -> workspace row by row.
// Access checks run against WorkspaceID; move validation against BoardID.
type ItemScope struct {
	ItemID      uuid.UUID
	GroupID     uuid.UUID
	BoardID     uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Position    int
}

type ItemRepositoryInterface interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	GetScope(ctx context.Context, id uuid.UUID) (*ItemScope, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, groupID uuid.UUID) (int, error)
	Move(ctx context.Context, itemID, groupID uuid.UUID, position int, movedBy uuid.UUID) error
	GetValue(ctx context.Context, itemID, columnID uuid.UUID) (*model.ItemValue, error)
	UpsertValue(ctx context.Context, value *model.ItemValue) error
	ReplaceAssignees(ctx context.Context, itemID uuid.UUID, userIDs []uuid.UUID) (added, removed []uuid.UUID, err error)
	GetWithAssignees(ctx context.Context, id uuid.UUID) (*model.Item, error)
}

var _ ItemRepositoryInterface = (*ItemRepository)(nil)

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *ItemRepository) GetScope(ctx context.Context, id uuid.UUID) (*ItemScope, error) {
	var scope ItemScope
	err := r.db.WithContext(ctx).
		Table("items").
		Select("items.id AS item_id, items.group_id, item_groups.board_id, boards.workspace_id, items.name, items.position").
		Joins("JOIN item_groups ON item_groups.id = items.group_id").
		Joins("JOIN boards ON boards.id = item_groups.board_id").
		Where("items.id = ?", id).
		Take(&scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Item{}, "id = ?", id).Error
}

func (r *ItemRepository) NextPosition(ctx context.Context, groupID uuid.UUID) (int, error) {
	return nextPosition(r.db.WithContext(ctx).Model(&model.Item{}).Where("group_id = ?", groupID))
}

// Move reparents the item and sets its position. Untouched siblings keep
// their positions; an explicit rebalance goes through reorder endpoints.
func (r *ItemRepository) Move(ctx context.Context, itemID, groupID uuid.UUID, position int, movedBy uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"group_id":      groupID,
			"position":      position,
			"updated_by_id": movedBy,
		}).Error
}

func (r *ItemRepository) GetValue(ctx context.Context, itemID, columnID uuid.UUID) (*model.ItemValue, error) {
	var value model.ItemValue
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND column_id = ?", itemID, columnID).
		First(&value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &value, err
}

// UpsertValue writes the cell for (item, column); the unique index makes the
// conflict path replace the payload instead of inserting a duplicate row.
func (r *ItemRepository) UpsertValue(ctx context.Context, value *model.ItemValue) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "column_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(value).Error
}

// ReplaceAssignees swaps the assignee set in one transaction and reports the
// per-user diff so the caller can record granular activity entries.
func (r *ItemRepository) ReplaceAssignees(ctx context.Context, itemID uuid.UUID, userIDs []uuid.UUID) (added, removed []uuid.UUID, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uuid.UUID
		if err := tx.Model(&model.ItemAssignee{}).
			Where("item_id = ?", itemID).
			Pluck("user_id", &current).Error; err != nil {
			return err
		}

		added, removed = DiffIDSets(current, userIDs)

		if len(removed) > 0 {
			if err := tx.
				Where("item_id = ? AND user_id IN ?", itemID, removed).
				Delete(&model.ItemAssignee{}).Error; err != nil {
				return err
			}
		}

		for _, userID := range added {
			assignee := model.ItemAssignee{ItemID: itemID, UserID: userID}
			if err := tx.Create(&assignee).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

func (r *ItemRepository) GetWithAssignees(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Preload("Assignees.User").
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// DiffIDSets returns the ids present only in next (added) and only in
// current (removed), preserving input order.
func DiffIDSets(current, next []uuid.UUID) (added, removed []uuid.UUID) {
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	nextSet := make(map[uuid.UUID]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
	}

	for _, id := range next {
		if _, ok := currentSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := nextSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
