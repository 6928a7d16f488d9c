package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

type OrganizationRepositoryInterface interface {
	Create(ctx context.Context, org *model.Organization) error
	GetBySlug(ctx context.Context, slug string) (*model.Organization, error)
	AddUser(ctx context.Context, orgID, userID uuid.UUID, role string) error
	GetRole(ctx context.Context, orgID, userID uuid.UUID) (string, error)
}

var _ OrganizationRepositoryInterface = (*OrganizationRepository)(nil)

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &org, err
}

func (r *OrganizationRepository) AddUser(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	member := model.OrganizationUser{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
	}
	return r.db.WithContext(ctx).Create(&member).Error
}

// GetRole returns the caller's organization role, or "" for non-members.
func (r *OrganizationRepository) GetRole(ctx context.Context, orgID, userID uuid.UUID) (string, error) {
	var member model.OrganizationUser
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}
