package handlers

import (
	"context"
	"io"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, tableID, customerID uuid.UUID, lines []models.OrderLineInput) (*models.Order, error) {
	args := m.Called(ctx, tableID, customerID, lines)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id, callerID uuid.UUID, role models.Role) (*models.Order, error) {
	args := m.Called(ctx, id, callerID, role)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) KitchenQueue(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error) {
	args := m.Called(ctx, statuses)
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) AdvanceStatus(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) RecordPayment(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id, method, processedBy)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) UpdateLineNote(ctx context.Context, orderID, lineID, callerID uuid.UUID, role models.Role, note *string) (*models.OrderLine, error) {
	args := m.Called(ctx, orderID, lineID, callerID, role, note)
	line, _ := args.Get(0).(*models.OrderLine)
	return line, args.Error(1)
}

type MockTableService struct {
	mock.Mock
}

func (m *MockTableService) Create(ctx context.Context, table *models.DiningTable) error {
	return m.Called(ctx, table).Error(0)
}

func (m *MockTableService) Get(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	args := m.Called(ctx, id)
	table, _ := args.Get(0).(*models.DiningTable)
	return table, args.Error(1)
}

func (m *MockTableService) List(ctx context.Context) ([]*models.DiningTable, error) {
	args := m.Called(ctx)
	tables, _ := args.Get(0).([]*models.DiningTable)
	return tables, args.Error(1)
}

func (m *MockTableService) Update(ctx context.Context, id uuid.UUID, patch *models.TablePatch) (*models.DiningTable, error) {
	args := m.Called(ctx, id, patch)
	table, _ := args.Get(0).(*models.DiningTable)
	return table, args.Error(1)
}

func (m *MockTableService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTableService) Sit(ctx context.Context, number int, userID uuid.UUID) (*models.DiningTable, error) {
	args := m.Called(ctx, number, userID)
	table, _ := args.Get(0).(*models.DiningTable)
	return table, args.Error(1)
}

func (m *MockTableService) Leave(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error) {
	args := m.Called(ctx, userID)
	table, _ := args.Get(0).(*models.DiningTable)
	return table, args.Error(1)
}

type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) Create(ctx context.Context, item *models.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockMenuService) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.MenuItem)
	return item, args.Error(1)
}

func (m *MockMenuService) ListAvailable(ctx context.Context) ([]*models.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*models.MenuItem)
	return items, args.Error(1)
}

func (m *MockMenuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*models.MenuItem)
	return items, args.Error(1)
}

func (m *MockMenuService) Update(ctx context.Context, id uuid.UUID, patch *models.MenuItemPatch) (*models.MenuItem, error) {
	args := m.Called(ctx, id, patch)
	item, _ := args.Get(0).(*models.MenuItem)
	return item, args.Error(1)
}

func (m *MockMenuService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMenuService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	recipe, _ := args.Get(0).(*models.Recipe)
	return recipe, args.Error(1)
}

func (m *MockMenuService) SetRecipe(ctx context.Context, id uuid.UUID, lines []models.RecipeLineInput) (*models.Recipe, error) {
	args := m.Called(ctx, id, lines)
	recipe, _ := args.Get(0).(*models.Recipe)
	return recipe, args.Error(1)
}

func (m *MockMenuService) UploadImage(ctx context.Context, id uuid.UUID, contentType string, size int64, reader io.Reader) (*models.MenuItem, error) {
	args := m.Called(ctx, id, contentType, size, reader)
	item, _ := args.Get(0).(*models.MenuItem)
	return item, args.Error(1)
}

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Create(ctx context.Context, ingredient *models.Ingredient) error {
	return m.Called(ctx, ingredient).Error(0)
}

func (m *MockInventoryService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	ingredient, _ := args.Get(0).(*models.Ingredient)
	return ingredient, args.Error(1)
}

func (m *MockInventoryService) List(ctx context.Context) ([]*models.Ingredient, error) {
	args := m.Called(ctx)
	ingredients, _ := args.Get(0).([]*models.Ingredient)
	return ingredients, args.Error(1)
}

func (m *MockInventoryService) ListLowStock(ctx context.Context) ([]*models.LowStockItem, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]*models.LowStockItem)
	return items, args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, id uuid.UUID, patch *models.IngredientPatch) (*models.Ingredient, error) {
	args := m.Called(ctx, id, patch)
	ingredient, _ := args.Get(0).(*models.Ingredient)
	return ingredient, args.Error(1)
}

func (m *MockInventoryService) Restock(ctx context.Context, id uuid.UUID, delta float64) (*models.Ingredient, error) {
	args := m.Called(ctx, id, delta)
	ingredient, _ := args.Get(0).(*models.Ingredient)
	return ingredient, args.Error(1)
}

func (m *MockInventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Create(ctx context.Context, schedule *models.Schedule) error {
	return m.Called(ctx, schedule).Error(0)
}

func (m *MockScheduleService) List(ctx context.Context) ([]*models.Schedule, error) {
	args := m.Called(ctx)
	schedules, _ := args.Get(0).([]*models.Schedule)
	return schedules, args.Error(1)
}

func (m *MockScheduleService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Schedule, error) {
	args := m.Called(ctx, userID)
	schedules, _ := args.Get(0).([]*models.Schedule)
	return schedules, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	token, _ := args.Get(0).(*models.TokenResponse)
	return token, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	token, _ := args.Get(0).(*models.TokenResponse)
	return token, args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) CreateStaff(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, email, password, role)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) EnsureUser(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, email, password, role)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*models.TokenClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*models.TokenClaims)
	return claims, args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context, rng models.ReportRange) (*models.ReportSummary, error) {
	args := m.Called(ctx, rng)
	summary, _ := args.Get(0).(*models.ReportSummary)
	return summary, args.Error(1)
}

func (m *MockReportService) PopularItems(ctx context.Context, rng models.ReportRange, limit int) ([]*models.PopularItem, error) {
	args := m.Called(ctx, rng, limit)
	items, _ := args.Get(0).([]*models.PopularItem)
	return items, args.Error(1)
}

func (m *MockReportService) PaymentSummary(ctx context.Context, rng models.ReportRange) (*models.PaymentSummary, error) {
	args := m.Called(ctx, rng)
	summary, _ := args.Get(0).(*models.PaymentSummary)
	return summary, args.Error(1)
}

func (m *MockReportService) DailySummary(ctx context.Context, rng models.ReportRange) ([]*models.DailySummary, error) {
	args := m.Called(ctx, rng)
	days, _ := args.Get(0).([]*models.DailySummary)
	return days, args.Error(1)
}

func (m *MockReportService) DailySummaryPDF(ctx context.Context, rng models.ReportRange) ([]byte, error) {
	args := m.Called(ctx, rng)
	doc, _ := args.Get(0).([]byte)
	return doc, args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubBucket struct {
	err error
}

func (s stubBucket) EnsureBucket(context.Context) error { return s.err }

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifyLowStock(ctx context.Context, alert *models.StockAlert) error {
	return m.Called(ctx, alert).Error(0)
}

func (m *MockNotificationService) RecentAlerts(ctx context.Context, limit int) ([]*models.StockAlert, error) {
	args := m.Called(ctx, limit)
	alerts, _ := args.Get(0).([]*models.StockAlert)
	return alerts, args.Error(1)
}

func (m *MockNotificationService) Close() error { return nil }

type MockAuditLogsService struct {
	mock.Mock
}

func (m *MockAuditLogsService) Record(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditLogsService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	logs, _ := args.Get(0).([]*models.AuditLog)
	return logs, args.Error(1)
}
