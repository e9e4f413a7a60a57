package services

import (
	"context"
	"slices"
	"time"

	"restopos/internal/caching"
	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxLineQuantity = 100

type OrderService interface {
	PlaceOrder(ctx context.Context, tableID, customerID uuid.UUID, lines []models.OrderLineInput) (*models.Order, error)
	GetOrder(ctx context.Context, id, callerID uuid.UUID, role models.Role) (*models.Order, error)
	ListMine(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error)
	KitchenQueue(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID) (*models.Order, error)
	RecordPayment(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID) (*models.Order, error)
	UpdateLineNote(ctx context.Context, orderID, lineID, callerID uuid.UUID, role models.Role, note *string) (*models.OrderLine, error)
}

type orderService struct {
	tx             repositories.Transactor
	orderRepo      repositories.OrderRepository
	lineRepo       repositories.OrderLineRepository
	tableRepo      repositories.TableRepository
	menuRepo       repositories.MenuItemRepository
	recipeRepo     repositories.RecipeRepository
	ingredientRepo repositories.IngredientRepository
	availability   AvailabilityService
	cache          caching.CacheService
	policy         models.StockPolicy
	logger         *zap.Logger
	now            func() time.Time
}

func NewOrderService(
	tx repositories.Transactor,
	orderRepo repositories.OrderRepository,
	lineRepo repositories.OrderLineRepository,
	tableRepo repositories.TableRepository,
	menuRepo repositories.MenuItemRepository,
	recipeRepo repositories.RecipeRepository,
	ingredientRepo repositories.IngredientRepository,
	availability AvailabilityService,
	cache caching.CacheService,
	policy models.StockPolicy,
	logger *zap.Logger,
) OrderService {
	if !policy.Valid() {
		policy = models.StockPolicyReject
	}
	return &orderService{
		tx:             tx,
		orderRepo:      orderRepo,
		lineRepo:       lineRepo,
		tableRepo:      tableRepo,
		menuRepo:       menuRepo,
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		availability:   availability,
		cache:          cache,
		policy:         policy,
		logger:         logger,
		now:            time.Now,
	}
}

// ingredientNeed is the total amount of one ingredient an order consumes.
type ingredientNeed struct {
	id     uuid.UUID
	name   string
	amount float64
}

func validateOrderLines(lines []models.OrderLineInput) error {
	if len(lines) == 0 {
		return common.Invalid("lines", "an order needs at least one line")
	}
	for _, line := range lines {
		if line.MenuItemID == uuid.Nil {
			return common.Invalid("menu_item_id", "menu_item_id is required")
		}
		if err := common.ValidatePositiveInteger(line.Quantity, "quantity", maxLineQuantity); err != nil {
			return common.Invalid("quantity", err.Error())
		}
		if err := common.ValidateOptionalString(line.Note, "note", 500); err != nil {
			return common.Invalid("note", err.Error())
		}
	}
	return nil
}

// PlaceOrder creates the order, consumes its ingredients and re-evaluates every
// affected menu item in one transaction. Nothing persists when any step fails.
func (s *orderService) PlaceOrder(ctx context.Context, tableID, customerID uuid.UUID, lines []models.OrderLineInput) (*models.Order, error) {
	if err := validateOrderLines(lines); err != nil {
		return nil, err
	}

	var (
		order   *models.Order
		results []models.AvailabilityResult
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		table, err := s.tableRepo.LockByID(ctx, tableID)
		if err != nil {
			return err
		}
		if !table.Status.AcceptsOrders() {
			return common.Conflict("table %d is %s and does not accept orders", table.Number, table.Status)
		}
		if table.CurrentUserID == nil || *table.CurrentUserID != customerID {
			return common.Forbidden("you are not seated at table %d", table.Number)
		}

		items := make(map[uuid.UUID]*models.MenuItem, len(lines))
		for _, line := range lines {
			if _, seen := items[line.MenuItemID]; seen {
				continue
			}
			item, err := s.menuRepo.GetByID(ctx, line.MenuItemID)
			if err != nil {
				return err
			}
			if !item.IsAvailable {
				return common.Conflict("%s is currently unavailable", item.Name)
			}
			items[line.MenuItemID] = item
		}

		order = &models.Order{
			ID:         uuid.New(),
			TableID:    table.ID,
			CustomerID: &customerID,
			Status:     models.OrderReceived,
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for _, in := range lines {
			line := &models.OrderLine{
				ID:           uuid.New(),
				OrderID:      order.ID,
				MenuItemID:   in.MenuItemID,
				MenuItemName: items[in.MenuItemID].Name,
				Quantity:     in.Quantity,
				UnitPrice:    items[in.MenuItemID].Price,
				Note:         in.Note,
			}
			if err := s.lineRepo.Create(ctx, line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}

		needs, err := s.aggregateNeeds(ctx, lines)
		if err != nil {
			return err
		}
		decremented, err := s.consume(ctx, needs)
		if err != nil {
			return err
		}

		affected := make([]uuid.UUID, 0, len(items))
		for id := range items {
			affected = append(affected, id)
		}
		if len(decremented) > 0 {
			dependents, err := s.recipeRepo.ListMenuItemIDsByIngredients(ctx, decremented)
			if err != nil {
				return err
			}
			affected = append(affected, dependents...)
		}
		results, err = s.availability.EvaluateMany(ctx, affected)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("table_id", tableID.String()),
		zap.Int("lines", len(order.Lines)))

	if anyChanged(results) {
		invalidateMenu(ctx, s.cache, s.logger)
	}
	s.invalidateReports(ctx)
	return order, nil
}

// aggregateNeeds sums amount_used * quantity per ingredient, in ascending id order.
func (s *orderService) aggregateNeeds(ctx context.Context, lines []models.OrderLineInput) ([]ingredientNeed, error) {
	quantities := make(map[uuid.UUID]int, len(lines))
	menuItemIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		quantities[line.MenuItemID] += line.Quantity
		menuItemIDs = append(menuItemIDs, line.MenuItemID)
	}

	reqs, err := s.recipeRepo.ListRequirements(ctx, distinctSorted(menuItemIDs))
	if err != nil {
		return nil, err
	}

	byIngredient := make(map[uuid.UUID]*ingredientNeed)
	for _, req := range reqs {
		if req.Missing() {
			s.logger.Warn("skipping missing ingredient while consuming stock",
				zap.String("menu_item_id", req.MenuItemID.String()),
				zap.String("ingredient_id", req.IngredientID.String()))
			continue
		}
		need, ok := byIngredient[req.IngredientID]
		if !ok {
			need = &ingredientNeed{id: req.IngredientID, name: *req.IngredientName}
			byIngredient[req.IngredientID] = need
		}
		need.amount += req.AmountUsed * float64(quantities[req.MenuItemID])
	}

	needs := make([]ingredientNeed, 0, len(byIngredient))
	for _, need := range byIngredient {
		needs = append(needs, *need)
	}
	slices.SortFunc(needs, func(a, b ingredientNeed) int { return compareIDs(a.id, b.id) })
	return needs, nil
}

// consume applies the stock policy to each need and returns the ingredients it decremented.
func (s *orderService) consume(ctx context.Context, needs []ingredientNeed) ([]uuid.UUID, error) {
	decremented := make([]uuid.UUID, 0, len(needs))
	for _, need := range needs {
		switch s.policy {
		case models.StockPolicyAllowNegative:
			remaining, err := s.ingredientRepo.DecrementStock(ctx, need.id, need.amount)
			if err != nil {
				return nil, err
			}
			if remaining < 0 {
				s.logger.Warn("ingredient oversold",
					zap.String("ingredient", need.name),
					zap.Float64("stock_quantity", remaining))
			}
		default:
			_, ok, err := s.ingredientRepo.DecrementStockIfAvailable(ctx, need.id, need.amount)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, common.Conflict("not enough %s in stock for this order", need.name)
			}
		}
		decremented = append(decremented, need.id)
	}
	return decremented, nil
}

func canView(order *models.Order, callerID uuid.UUID, role models.Role) bool {
	if role.IsStaff() {
		return true
	}
	return order.CustomerID != nil && *order.CustomerID == callerID
}

func (s *orderService) withLines(ctx context.Context, order *models.Order) error {
	lines, err := s.lineRepo.ListByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Lines = lines
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id, callerID uuid.UUID, role models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(order, callerID, role) {
		return nil, common.Forbidden("you cannot view this order")
	}
	if err := s.withLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if err := s.withLines(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// KitchenQueue lists orders oldest first. With no statuses it shows the open kitchen work.
func (s *orderService) KitchenQueue(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error) {
	if len(statuses) == 0 {
		statuses = []models.OrderStatus{models.OrderReceived, models.OrderPreparing}
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, common.Invalid("status", "unknown order status "+string(status))
		}
	}
	orders, err := s.orderRepo.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if err := s.withLines(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// AdvanceStatus moves an order one step forward. READY orders close through RecordPayment.
func (s *orderService) AdvanceStatus(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, common.Conflict("order is %s and cannot advance", order.Status)
	}
	if next == models.OrderPaid {
		return nil, common.Conflict("order is READY; record a payment to close it")
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, common.Conflict("order status changed, reload and try again")
	}
	s.logger.Info("order advanced",
		zap.String("order_id", id.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))

	order.Status = next
	return order, nil
}

func (s *orderService) RecordPayment(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID) (*models.Order, error) {
	if !method.Valid() {
		return nil, common.Invalid("payment_method", "payment_method must be one of cash, credit, online")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsPaid || order.Status == models.OrderPaid {
		return nil, common.Conflict("order is already paid")
	}
	if order.Status != models.OrderReady {
		return nil, common.Conflict("order is %s; only READY orders can be paid", order.Status)
	}

	paidAt := s.now().UTC()
	marked, err := s.orderRepo.MarkPaid(ctx, id, method, processedBy, paidAt)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, common.Conflict("order changed while recording the payment")
	}

	order.Status = models.OrderPaid
	order.IsPaid = true
	order.PaymentMethod = &method
	order.ProcessedByID = &processedBy
	order.PaidAt = &paidAt
	s.invalidateReports(ctx)
	return order, nil
}

func (s *orderService) UpdateLineNote(ctx context.Context, orderID, lineID, callerID uuid.UUID, role models.Role, note *string) (*models.OrderLine, error) {
	if err := common.ValidateOptionalString(note, "note", 500); err != nil {
		return nil, common.Invalid("note", err.Error())
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(order, callerID, role) {
		return nil, common.Forbidden("you cannot edit this order")
	}
	if order.Status != models.OrderReceived {
		return nil, common.Conflict("order is %s; lines can only change while RECEIVED", order.Status)
	}

	lines, err := s.lineRepo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(lines, func(l *models.OrderLine) bool { return l.ID == lineID })
	if idx < 0 {
		return nil, common.NotFound("order line %s not found", lineID)
	}

	updated, err := s.lineRepo.UpdateNote(ctx, orderID, lineID, note)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, common.Conflict("order left RECEIVED; lines can no longer change")
	}
	lines[idx].Note = note
	return lines[idx], nil
}

func (s *orderService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateReports(ctx); err != nil {
		s.logger.Warn("failed to invalidate report cache", zap.Error(err))
	}
}
