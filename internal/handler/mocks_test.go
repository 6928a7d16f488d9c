package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

// envelope mirrors the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

type errorBody struct {
	Message string              `json:"message"`
	Details map[string][]string `json:"details"`
}

// newRouter returns a test engine that authenticates every request as userID,
// standing in for the JWT middleware.
func newRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	return r
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(body []byte) envelope {
	var env envelope
	_ = json.Unmarshal(body, &env)
	return env
}

var (
	_ repository.UserRepositoryInterface         = (*MockUserRepository)(nil)
	_ repository.AccountRepositoryInterface      = (*MockAccountRepository)(nil)
	_ repository.TokenRepositoryInterface        = (*MockTokenRepository)(nil)
	_ repository.WorkspaceRepositoryInterface    = (*MockWorkspaceRepository)(nil)
	_ repository.OrganizationRepositoryInterface = (*MockOrganizationRepository)(nil)
	_ repository.BoardRepositoryInterface        = (*MockBoardRepository)(nil)
	_ repository.ItemRepositoryInterface         = (*MockItemRepository)(nil)
	_ repository.ActivityRepositoryInterface     = (*MockActivityRepository)(nil)
	_ repository.CtaRepositoryInterface          = (*MockCtaRepository)(nil)
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Register(ctx context.Context, user *model.User, organizationName string) error {
	args := m.Called(ctx, user, organizationName)
	return args.Error(0)
}

func (m *MockAccountRepository) MigrateUsers(ctx context.Context) (int, uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Get(1).(uuid.UUID), args.Error(2)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	stored := args.Get(0)
	if stored == nil {
		return nil, args.Error(1)
	}
	return stored.(*model.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) RotateRefreshToken(ctx context.Context, oldID uuid.UUID, replacement *model.RefreshToken) error {
	args := m.Called(ctx, oldID, replacement)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) CreateResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, token)
	stored := args.Get(0)
	if stored == nil {
		return nil, args.Error(1)
	}
	return stored.(*model.PasswordResetToken), args.Error(1)
}

func (m *MockTokenRepository) InvalidateResetTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) ResetPassword(ctx context.Context, tokenID, userID uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tokenID, userID, passwordHash)
	return args.Error(0)
}

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) CreateWithOwner(ctx context.Context, workspace *model.Workspace, ownerID uuid.UUID) error {
	args := m.Called(ctx, workspace, ownerID)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	args := m.Called(ctx, userID)
	workspaces := args.Get(0)
	if workspaces == nil {
		return nil, args.Error(1)
	}
	return workspaces.([]model.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	args := m.Called(ctx, id)
	workspace := args.Get(0)
	if workspace == nil {
		return nil, args.Error(1)
	}
	return workspace.(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) Update(ctx context.Context, workspace *model.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) GetRole(ctx context.Context, workspaceID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockWorkspaceRepository) AddUser(ctx context.Context, workspaceID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, workspaceID, userID, role)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) ListUsers(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceUser, error) {
	args := m.Called(ctx, workspaceID)
	members := args.Get(0)
	if members == nil {
		return nil, args.Error(1)
	}
	return members.([]model.WorkspaceUser), args.Error(1)
}

func (m *MockWorkspaceRepository) ListAvailableUsers(ctx context.Context, workspaceID, orgID uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, workspaceID, orgID)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func (m *MockWorkspaceRepository) TagValues(ctx context.Context, workspaceID uuid.UUID) ([]datatypes.JSON, error) {
	args := m.Called(ctx, workspaceID)
	values := args.Get(0)
	if values == nil {
		return nil, args.Error(1)
	}
	return values.([]datatypes.JSON), args.Error(1)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	args := m.Called(ctx, slug)
	org := args.Get(0)
	if org == nil {
		return nil, args.Error(1)
	}
	return org.(*model.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) AddUser(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, orgID, userID, role)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetRole(ctx context.Context, orgID, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID, userID)
	return args.String(0), args.Error(1)
}

type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) CreateWithDefaultGroup(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) GetAggregate(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) Update(ctx context.Context, board *model.Board) error {
	args := m.Called(ctx, board)
	return args.Error(0)
}

func (m *MockBoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBoardRepository) CreateColumn(ctx context.Context, column *model.BoardColumn) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockBoardRepository) GetColumn(ctx context.Context, id uuid.UUID) (*model.BoardColumn, error) {
	args := m.Called(ctx, id)
	column := args.Get(0)
	if column == nil {
		return nil, args.Error(1)
	}
	return column.(*model.BoardColumn), args.Error(1)
}

func (m *MockBoardRepository) CreateGroup(ctx context.Context, group *model.ItemGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockBoardRepository) GetGroup(ctx context.Context, id uuid.UUID) (*model.ItemGroup, error) {
	args := m.Called(ctx, id)
	group := args.Get(0)
	if group == nil {
		return nil, args.Error(1)
	}
	return group.(*model.ItemGroup), args.Error(1)
}

func (m *MockBoardRepository) NextColumnPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

func (m *MockBoardRepository) NextGroupPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	args := m.Called(ctx, id)
	item := args.Get(0)
	if item == nil {
		return nil, args.Error(1)
	}
	return item.(*model.Item), args.Error(1)
}

func (m *MockItemRepository) GetScope(ctx context.Context, id uuid.UUID) (*repository.ItemScope, error) {
	args := m.Called(ctx, id)
	scope := args.Get(0)
	if scope == nil {
		return nil, args.Error(1)
	}
	return scope.(*repository.ItemScope), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) NextPosition(ctx context.Context, groupID uuid.UUID) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

func (m *MockItemRepository) Move(ctx context.Context, itemID, groupID uuid.UUID, position int, movedBy uuid.UUID) error {
	args := m.Called(ctx, itemID, groupID, position, movedBy)
	return args.Error(0)
}

func (m *MockItemRepository) GetValue(ctx context.Context, itemID, columnID uuid.UUID) (*model.ItemValue, error) {
	args := m.Called(ctx, itemID, columnID)
	value := args.Get(0)
	if value == nil {
		return nil, args.Error(1)
	}
	return value.(*model.ItemValue), args.Error(1)
}

func (m *MockItemRepository) UpsertValue(ctx context.Context, value *model.ItemValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockItemRepository) ReplaceAssignees(ctx context.Context, itemID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
	args := m.Called(ctx, itemID, userIDs)
	var added, removed []uuid.UUID
	if args.Get(0) != nil {
		added = args.Get(0).([]uuid.UUID)
	}
	if args.Get(1) != nil {
		removed = args.Get(1).([]uuid.UUID)
	}
	return added, removed, args.Error(2)
}

func (m *MockItemRepository) GetWithAssignees(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	args := m.Called(ctx, id)
	item := args.Get(0)
	if item == nil {
		return nil, args.Error(1)
	}
	return item.(*model.Item), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Log(ctx context.Context, activity *model.ItemActivity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]model.ItemActivity, error) {
	args := m.Called(ctx, itemID, limit, offset)
	activities := args.Get(0)
	if activities == nil {
		return nil, args.Error(1)
	}
	return activities.([]model.ItemActivity), args.Error(1)
}

type MockCtaRepository struct {
	mock.Mock
}

func (m *MockCtaRepository) Create(ctx context.Context, cta *model.ItemCta) error {
	args := m.Called(ctx, cta)
	return args.Error(0)
}

func (m *MockCtaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ItemCta, error) {
	args := m.Called(ctx, id)
	cta := args.Get(0)
	if cta == nil {
		return nil, args.Error(1)
	}
	return cta.(*model.ItemCta), args.Error(1)
}

func (m *MockCtaRepository) GetScope(ctx context.Context, id uuid.UUID) (*repository.CtaScope, error) {
	args := m.Called(ctx, id)
	scope := args.Get(0)
	if scope == nil {
		return nil, args.Error(1)
	}
	return scope.(*repository.CtaScope), args.Error(1)
}

func (m *MockCtaRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.ItemCta, error) {
	args := m.Called(ctx, itemID)
	ctas := args.Get(0)
	if ctas == nil {
		return nil, args.Error(1)
	}
	return ctas.([]model.ItemCta), args.Error(1)
}

func (m *MockCtaRepository) Update(ctx context.Context, cta *model.ItemCta) error {
	args := m.Called(ctx, cta)
	return args.Error(0)
}

func (m *MockCtaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCtaRepository) NextPosition(ctx context.Context, itemID uuid.UUID) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}

func (m *MockCtaRepository) Reorder(ctx context.Context, itemID uuid.UUID, orderedIDs []uuid.UUID) error {
	args := m.Called(ctx, itemID, orderedIDs)
	return args.Error(0)
}
