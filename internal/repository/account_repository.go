package repository

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultOrgSlug = "default-organization"

// AccountRepository owns the registration cascade: user, organization
// membership and, for users bringing their own organization, a fully seeded
// workspace. Everything runs in a single transaction so a failed signup
// leaves no partial tenant behind.
type AccountRepository struct {
	db *gorm.DB
}

type AccountRepositoryInterface interface {
	Register(ctx context.Context, user *model.User, organizationName string) error
	MigrateUsers(ctx context.Context) (migrated int, orgID uuid.UUID, err error)
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Register(ctx context.Context, user *model.User, organizationName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		// Every user joins the shared default organization.
		defaultOrg, err := getOrCreateDefaultOrg(tx)
		if err != nil {
			return err
		}
		if err := tx.Create(&model.OrganizationUser{
			UserID:         user.ID,
			OrganizationID: defaultOrg.ID,
			Role:           model.OrgRoleMember,
		}).Error; err != nil {
			return err
		}

		if organizationName == "" {
			return createPlainWorkspace(tx, user, defaultOrg)
		}
		return seedOwnOrganization(tx, user, organizationName)
	})
}

// MigrateUsers backfills every user without a default-organization membership
// into it as MEMBER. Safe to run repeatedly; already-migrated users match the
// NOT IN subquery and are skipped.
func (r *AccountRepository) MigrateUsers(ctx context.Context) (int, uuid.UUID, error) {
	var migrated int
	var orgID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := getOrCreateDefaultOrg(tx)
		if err != nil {
			return err
		}
		orgID = org.ID

		var users []model.User
		if err := tx.
			Where("id NOT IN (?)", tx.Model(&model.OrganizationUser{}).
				Select("user_id").
				Where("organization_id = ?", org.ID)).
			Find(&users).Error; err != nil {
			return err
		}

		for i := range users {
			if err := tx.Create(&model.OrganizationUser{
				UserID:         users[i].ID,
				OrganizationID: org.ID,
				Role:           model.OrgRoleMember,
			}).Error; err != nil {
				return err
			}
		}
		migrated = len(users)
		return nil
	})
	if err != nil {
		return 0, uuid.Nil, err
	}
	return migrated, orgID, nil
}

func getOrCreateDefaultOrg(tx *gorm.DB) (*model.Organization, error) {
	var org model.Organization
	err := tx.Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = model.Organization{Name: "Default Organization", Slug: defaultOrgSlug}
	if err := tx.Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func createPlainWorkspace(tx *gorm.DB, user *model.User, org *model.Organization) error {
	description := "Your default workspace"
	workspace := model.Workspace{
		Name:           user.FirstName + "'s Workspace",
		Description:    &description,
		OrganizationID: org.ID,
	}
	if err := tx.Create(&workspace).Error; err != nil {
		return err
	}
	return tx.Create(&model.WorkspaceUser{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        model.RoleOwner,
	}).Error
}

// seedOwnOrganization builds the starter tenant: the named organization,
// "Main Workspace", two boards, and on the first board three typed columns,
// one group and two items with a value in every column.
func seedOwnOrganization(tx *gorm.DB, user *model.User, organizationName string) error {
	org := model.Organization{Name: organizationName, Slug: Slugify(organizationName)}
	if err := tx.Create(&org).Error; err != nil {
		return err
	}
	if err := tx.Create(&model.OrganizationUser{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           model.OrgRoleOwner,
	}).Error; err != nil {
		return err
	}

	description := "Your default workspace"
	workspace := model.Workspace{
		Name:           "Main Workspace",
		Description:    &description,
		OrganizationID: org.ID,
	}
	if err := tx.Create(&workspace).Error; err != nil {
		return err
	}
	if err := tx.Create(&model.WorkspaceUser{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        model.RoleOwner,
	}).Error; err != nil {
		return err
	}

	firstDesc := "Get started with your first board"
	firstBoard := model.Board{
		Name:        "My First Board",
		Description: &firstDesc,
		WorkspaceID: workspace.ID,
	}
	if err := tx.Create(&firstBoard).Error; err != nil {
		return err
	}
	secondDesc := "Manage your project tasks here"
	secondBoard := model.Board{
		Name:        "Project Tasks",
		Description: &secondDesc,
		WorkspaceID: workspace.ID,
	}
	if err := tx.Create(&secondBoard).Error; err != nil {
		return err
	}

	statusColumn := model.BoardColumn{
		BoardID:  firstBoard.ID,
		Title:    "Status",
		Type:     model.ColumnTypeStatus,
		Position: 0,
		Settings: datatypes.JSON(`{"labels":[{"id":"1","label":"To Do","color":"#c4c4c4"},{"id":"2","label":"In Progress","color":"#fdab3d"},{"id":"3","label":"Done","color":"#00c875"}]}`),
	}
	dateColumn := model.BoardColumn{
		BoardID:  firstBoard.ID,
		Title:    "Due Date",
		Type:     model.ColumnTypeDate,
		Position: 1,
	}
	tagsColumn := model.BoardColumn{
		BoardID:  firstBoard.ID,
		Title:    "Tags",
		Type:     model.ColumnTypeTags,
		Position: 2,
	}
	for _, column := range []*model.BoardColumn{&statusColumn, &dateColumn, &tagsColumn} {
		if err := tx.Create(column).Error; err != nil {
			return err
		}
	}

	group := model.ItemGroup{
		BoardID:  firstBoard.ID,
		Name:     "Tasks",
		Color:    "#579bfc",
		Position: 0,
	}
	if err := tx.Create(&group).Error; err != nil {
		return err
	}

	item1 := model.Item{
		GroupID:     group.ID,
		Name:        "Welcome to your first board!",
		Position:    0,
		CreatedByID: user.ID,
	}
	item2 := model.Item{
		GroupID:     group.ID,
		Name:        "Complete your profile setup",
		Position:    1,
		CreatedByID: user.ID,
	}
	for _, item := range []*model.Item{&item1, &item2} {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
	}

	in := func(days int) string {
		return time.Now().AddDate(0, 0, days).Format(time.RFC3339)
	}
	values := []model.ItemValue{
		{ItemID: item1.ID, ColumnID: statusColumn.ID, Value: datatypes.JSON(`{"labelId":"1"}`)},
		{ItemID: item1.ID, ColumnID: dateColumn.ID, Value: datatypes.JSON(`{"date":"` + in(7) + `"}`)},
		{ItemID: item1.ID, ColumnID: tagsColumn.ID, Value: datatypes.JSON(`["Important","Feature"]`)},
		{ItemID: item2.ID, ColumnID: statusColumn.ID, Value: datatypes.JSON(`{"labelId":"2"}`)},
		{ItemID: item2.ID, ColumnID: dateColumn.ID, Value: datatypes.JSON(`{"date":"` + in(3) + `"}`)},
		{ItemID: item2.ID, ColumnID: tagsColumn.ID, Value: datatypes.JSON(`["Urgent"]`)},
	}
	for i := range values {
		if err := tx.Create(&values[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name, collapses non-alphanumeric runs into dashes
// and appends a base36 timestamp so organization slugs stay unique.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-")
	return slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
