package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CtaRepository struct {
	db *gorm.DB
}

// CtaScope resolves a CTA's ancestry for access checks, one joined query.
type CtaScope struct {
	CtaID       uuid.UUID
	ItemID      uuid.UUID
	WorkspaceID uuid.UUID
}

type CtaRepositoryInterface interface {
	Create(ctx context.Context, cta *model.ItemCta) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ItemCta, error)
	GetScope(ctx context.Context, id uuid.UUID) (*CtaScope, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.ItemCta, error)
	Update(ctx context.Context, cta *model.ItemCta) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, itemID uuid.UUID) (int, error)
	Reorder(ctx context.Context, itemID uuid.UUID, orderedIDs []uuid.UUID) error
}

var _ CtaRepositoryInterface = (*CtaRepository)(nil)

func NewCtaRepository(db *gorm.DB) *CtaRepository {
	return &CtaRepository{db: db}
}

func (r *CtaRepository) Create(ctx context.Context, cta *model.ItemCta) error {
	return r.db.WithContext(ctx).Create(cta).Error
}

func (r *CtaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ItemCta, error) {
	var cta model.ItemCta
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cta, err
}

func (r *CtaRepository) GetScope(ctx context.Context, id uuid.UUID) (*CtaScope, error) {
	var scope CtaScope
	err := r.db.WithContext(ctx).
		Table("item_ctas").
		Select("item_ctas.id AS cta_id, item_ctas.item_id, boards.workspace_id").
		Joins("JOIN items ON items.id = item_ctas.item_id").
		Joins("JOIN item_groups ON item_groups.id = items.group_id").
		Joins("JOIN boards ON boards.id = item_groups.board_id").
		Where("item_ctas.id = ?", id).
		Take(&scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

func (r *CtaRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.ItemCta, error) {
	var ctas []model.ItemCta
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("position").
		Find(&ctas).Error
	return ctas, err
}

func (r *CtaRepository) Update(ctx context.Context, cta *model.ItemCta) error {
	return r.db.WithContext(ctx).Save(cta).Error
}

func (r *CtaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ItemCta{}, "id = ?", id).Error
}

func (r *CtaRepository) NextPosition(ctx context.Context, itemID uuid.UUID) (int, error) {
	return nextPosition(r.db.WithContext(ctx).Model(&model.ItemCta{}).Where("item_id = ?", itemID))
}

// Reorder rewrites positions as the index of each id in the given order.
// All-or-nothing: a partial rewrite would corrupt the display order.
func (r *CtaRepository) Reorder(ctx context.Context, itemID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index, id := range orderedIDs {
			if err := tx.Model(&model.ItemCta{}).
				Where("id = ? AND item_id = ?", id, itemID).
				Update("position", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
