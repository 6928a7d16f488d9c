package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

type BoardRepositoryInterface interface {
	CreateWithDefaultGroup(ctx context.Context, board *model.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	GetAggregate(ctx context.Context, id uuid.UUID) (*model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateColumn(ctx context.Context, column *model.BoardColumn) error
	GetColumn(ctx context.Context, id uuid.UUID) (*model.BoardColumn, error)
	CreateGroup(ctx context.Context, group *model.ItemGroup) error
	GetGroup(ctx context.Context, id uuid.UUID) (*model.ItemGroup, error)
	NextColumnPosition(ctx context.Context, boardID uuid.UUID) (int, error)
	NextGroupPosition(ctx context.Context, boardID uuid.UUID) (int, error)
}

var _ BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateWithDefaultGroup creates the board together with its starter group.
func (r *BoardRepository) CreateWithDefaultGroup(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		return tx.Create(&model.ItemGroup{
			BoardID:  board.ID,
			Name:     "New Group",
			Position: 0,
		}).Error
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &board, err
}

// GetAggregate loads the full nested board: columns, groups and items by
// position ascending, each item with its values, assignees and creator.
// Always a fresh fan-out read; there is no caching layer.
func (r *BoardRepository) GetAggregate(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	byPosition := func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}

	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", byPosition).
		Preload("Groups", byPosition).
		Preload("Groups.Items", byPosition).
		Preload("Groups.Items.Values").
		Preload("Groups.Items.Assignees.User").
		Preload("Groups.Items.Creator").
		Where("id = ?", id).
		First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &board, err
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Board{}, "id = ?", id).Error
}

func (r *BoardRepository) CreateColumn(ctx context.Context, column *model.BoardColumn) error {
	return r.db.WithContext(ctx).Create(column).Error
}

func (r *BoardRepository) GetColumn(ctx context.Context, id uuid.UUID) (*model.BoardColumn, error) {
	var column model.BoardColumn
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &column, err
}

func (r *BoardRepository) CreateGroup(ctx context.Context, group *model.ItemGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *BoardRepository) GetGroup(ctx context.Context, id uuid.UUID) (*model.ItemGroup, error) {
	var group model.ItemGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &group, err
}

func (r *BoardRepository) NextColumnPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	return nextPosition(r.db.WithContext(ctx).Model(&model.BoardColumn{}).Where("board_id = ?", boardID))
}

func (r *BoardRepository) NextGroupPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	return nextPosition(r.db.WithContext(ctx).Model(&model.ItemGroup{}).Where("board_id = ?", boardID))
}

// nextPosition computes max(position)+1 over the scoped query, 0 for an
// empty container. Computed fresh per call; concurrent inserts may race to
// the same value and the last write wins, positions are only an ordering.
func nextPosition(scope *gorm.DB) (int, error) {
	var result struct {
		Next int
	}
	err := scope.Select("COALESCE(MAX(position), -1) + 1 AS next").Scan(&result).Error
	return result.Next, err
}
