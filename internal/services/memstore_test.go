package services

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
)

// memStore is an in-memory database with serializable transactions: a
// transaction holds the store lock from begin to end and rolls back to a
// snapshot when fn fails. Transactions therefore never interleave, so order
// tests exercise the reject path but not a racing compare-and-decrement. In
// Postgres that race is closed by the `stock_quantity >= $2` guard in
// ingredientRepo.DecrementStockIfAvailable. Outside a transaction each
// repository call locks on its own, which is what
// TestDecrementStockIfAvailable_ConcurrentCallersNeverOversell relies on.
type memStore struct {
	mu          sync.Mutex
	ingredients map[uuid.UUID]models.Ingredient
	menu        map[uuid.UUID]models.MenuItem
	recipes     []models.RecipeLine
	tables      map[uuid.UUID]models.DiningTable
	orders      map[uuid.UUID]models.Order
	lines       map[uuid.UUID]models.OrderLine
	commits     int
	writes      int
	rollbacks   int
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		ingredients: map[uuid.UUID]models.Ingredient{},
		menu:        map[uuid.UUID]models.MenuItem{},
		tables:      map[uuid.UUID]models.DiningTable{},
		orders:      map[uuid.UUID]models.Order{},
		lines:       map[uuid.UUID]models.OrderLine{},
	}
}

type memSnapshot struct {
	ingredients map[uuid.UUID]models.Ingredient
	menu        map[uuid.UUID]models.MenuItem
	recipes     []models.RecipeLine
	tables      map[uuid.UUID]models.DiningTable
	orders      map[uuid.UUID]models.Order
	lines       map[uuid.UUID]models.OrderLine
}

func (m *memStore) snapshot() memSnapshot {
	return memSnapshot{
		ingredients: maps.Clone(m.ingredients),
		menu:        maps.Clone(m.menu),
		recipes:     slices.Clone(m.recipes),
		tables:      maps.Clone(m.tables),
		orders:      maps.Clone(m.orders),
		lines:       maps.Clone(m.lines),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.ingredients = s.ingredients
	m.menu = s.menu
	m.recipes = s.recipes
	m.tables = s.tables
	m.orders = s.orders
	m.lines = s.lines
}

func (m *memStore) InTx(ctx context.Context) bool {
	return ctx.Value(memTxKey{}) != nil
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.InTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.restore(snap)
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

// locked runs fn under the store lock unless ctx already holds it.
func (m *memStore) locked(ctx context.Context, fn func()) {
	if !m.InTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	fn()
}

// Seeding and inspection helpers. Callers must not run them concurrently with transactions.

func (m *memStore) addIngredient(name string, stock float64) uuid.UUID {
	id := uuid.New()
	m.ingredients[id] = models.Ingredient{ID: id, Name: name, Unit: "unit", StockQuantity: stock}
	return id
}

func (m *memStore) addMenuItem(name string, price string, lines map[uuid.UUID]float64) uuid.UUID {
	id := uuid.New()
	m.menu[id] = models.MenuItem{ID: id, Name: name, Price: mustDecimal(price), IsAvailable: true}
	for ingredientID, amount := range lines {
		m.recipes = append(m.recipes, models.RecipeLine{MenuItemID: id, IngredientID: ingredientID, AmountUsed: amount})
	}
	return id
}

func (m *memStore) addTable(number int, occupant *uuid.UUID) uuid.UUID {
	id := uuid.New()
	status := models.TableAvailable
	if occupant != nil {
		status = models.TableOccupied
	}
	m.tables[id] = models.DiningTable{ID: id, Number: number, Seats: 4, Status: status, CurrentUserID: occupant}
	return id
}

func (m *memStore) stock(id uuid.UUID) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingredients[id].StockQuantity
}

func (m *memStore) available(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menu[id].IsAvailable
}

func (m *memStore) availabilityWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) lineCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines)
}

// memIngredients implements repositories.IngredientRepository.
type memIngredients struct{ *memStore }

func (r memIngredients) Create(ctx context.Context, ingredient *models.Ingredient) error {
	r.locked(ctx, func() {
		if ingredient.ID == uuid.Nil {
			ingredient.ID = uuid.New()
		}
		r.ingredients[ingredient.ID] = *ingredient
	})
	return nil
}

func (r memIngredients) GetByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var (
		ing models.Ingredient
		ok  bool
	)
	r.locked(ctx, func() { ing, ok = r.ingredients[id] })
	if !ok {
		return nil, common.NotFound("ingredient not found")
	}
	return &ing, nil
}

func (r memIngredients) List(ctx context.Context) ([]*models.Ingredient, error) {
	var out []*models.Ingredient
	r.locked(ctx, func() {
		for _, ing := range r.ingredients {
			out = append(out, &ing)
		}
	})
	return out, nil
}

func (r memIngredients) ListLowStock(ctx context.Context) ([]*models.LowStockItem, error) {
	var out []*models.LowStockItem
	r.locked(ctx, func() {
		for _, ing := range r.ingredients {
			if ing.IsLow() {
				out = append(out, &models.LowStockItem{ID: ing.ID, Name: ing.Name, StockQuantity: ing.StockQuantity, LowStockThreshold: ing.LowStockThreshold})
			}
		}
	})
	return out, nil
}

func (r memIngredients) Update(ctx context.Context, ingredient *models.Ingredient) error {
	var ok bool
	r.locked(ctx, func() {
		if _, ok = r.ingredients[ingredient.ID]; ok {
			r.ingredients[ingredient.ID] = *ingredient
		}
	})
	if !ok {
		return common.NotFound("ingredient not found")
	}
	return nil
}

func (r memIngredients) DecrementStock(ctx context.Context, id uuid.UUID, amount float64) (float64, error) {
	return r.AdjustStock(ctx, id, -amount)
}

func (r memIngredients) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, amount float64) (float64, bool, error) {
	var (
		remaining float64
		ok        bool
	)
	r.locked(ctx, func() {
		ing, found := r.ingredients[id]
		if !found || ing.StockQuantity < amount {
			return
		}
		ing.StockQuantity -= amount
		r.ingredients[id] = ing
		remaining, ok = ing.StockQuantity, true
	})
	return remaining, ok, nil
}

func (r memIngredients) AdjustStock(ctx context.Context, id uuid.UUID, delta float64) (float64, error) {
	var (
		remaining float64
		found     bool
	)
	r.locked(ctx, func() {
		var ing models.Ingredient
		if ing, found = r.ingredients[id]; found {
			ing.StockQuantity += delta
			r.ingredients[id] = ing
			remaining = ing.StockQuantity
		}
	})
	if !found {
		return 0, common.NotFound("ingredient not found")
	}
	return remaining, nil
}

func (r memIngredients) Delete(ctx context.Context, id uuid.UUID) error {
	r.locked(ctx, func() { delete(r.ingredients, id) })
	return nil
}

// memRecipes implements repositories.RecipeRepository.
type memRecipes struct{ *memStore }

func (r memRecipes) ListRequirements(ctx context.Context, menuItemIDs []uuid.UUID) ([]*models.RecipeRequirement, error) {
	var out []*models.RecipeRequirement
	r.locked(ctx, func() {
		for _, line := range r.recipes {
			if !slices.Contains(menuItemIDs, line.MenuItemID) {
				continue
			}
			req := &models.RecipeRequirement{MenuItemID: line.MenuItemID, IngredientID: line.IngredientID, AmountUsed: line.AmountUsed}
			if ing, ok := r.ingredients[line.IngredientID]; ok {
				name, stock := ing.Name, ing.StockQuantity
				req.IngredientName = &name
				req.StockQuantity = &stock
			}
			out = append(out, req)
		}
	})
	return out, nil
}

func (r memRecipes) ReplaceForMenuItem(ctx context.Context, menuItemID uuid.UUID, lines []models.RecipeLine) error {
	r.locked(ctx, func() {
		r.recipes = slices.DeleteFunc(r.recipes, func(l models.RecipeLine) bool { return l.MenuItemID == menuItemID })
		r.recipes = append(r.recipes, lines...)
	})
	return nil
}

func (r memRecipes) ListMenuItemIDsByIngredients(ctx context.Context, ingredientIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	r.locked(ctx, func() {
		for _, line := range r.recipes {
			if slices.Contains(ingredientIDs, line.IngredientID) {
				out = append(out, line.MenuItemID)
			}
		}
	})
	return distinctSorted(out), nil
}

func (r memRecipes) CountByIngredient(ctx context.Context, ingredientID uuid.UUID) (int, error) {
	var n int
	r.locked(ctx, func() {
		for _, line := range r.recipes {
			if line.IngredientID == ingredientID {
				n++
			}
		}
	})
	return n, nil
}

// memMenu implements repositories.MenuItemRepository.
type memMenu struct{ *memStore }

func (r memMenu) Create(ctx context.Context, item *models.MenuItem) error {
	r.locked(ctx, func() {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.IsAvailable = true
		r.menu[item.ID] = *item
	})
	return nil
}

func (r memMenu) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var (
		item models.MenuItem
		ok   bool
	)
	r.locked(ctx, func() { item, ok = r.menu[id] })
	if !ok {
		return nil, common.NotFound("menu item not found")
	}
	return &item, nil
}

func (r memMenu) List(ctx context.Context, onlyAvailable bool) ([]*models.MenuItem, error) {
	var out []*models.MenuItem
	r.locked(ctx, func() {
		for _, item := range r.menu {
			if onlyAvailable && !item.IsAvailable {
				continue
			}
			out = append(out, &item)
		}
	})
	return out, nil
}

func (r memMenu) Update(ctx context.Context, item *models.MenuItem) error {
	r.locked(ctx, func() {
		current := r.menu[item.ID]
		item.IsAvailable = current.IsAvailable
		r.menu[item.ID] = *item
	})
	return nil
}

func (r memMenu) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	r.locked(ctx, func() {
		item := r.menu[id]
		item.IsAvailable = available
		r.menu[id] = item
		r.writes++
	})
	return nil
}

func (r memMenu) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	r.locked(ctx, func() {
		item := r.menu[id]
		item.ImageKey = &key
		r.menu[id] = item
	})
	return nil
}

func (r memMenu) Delete(ctx context.Context, id uuid.UUID) error {
	r.locked(ctx, func() { delete(r.menu, id) })
	return nil
}

// memTables implements repositories.TableRepository.
type memTables struct{ *memStore }

func (r memTables) Create(ctx context.Context, table *models.DiningTable) error {
	r.locked(ctx, func() { r.tables[table.ID] = *table })
	return nil
}

func (r memTables) GetByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	var (
		table models.DiningTable
		ok    bool
	)
	r.locked(ctx, func() { table, ok = r.tables[id] })
	if !ok {
		return nil, common.NotFound("table not found")
	}
	return &table, nil
}

func (r memTables) LockByID(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	return r.GetByID(ctx, id)
}

func (r memTables) LockByNumber(ctx context.Context, number int) (*models.DiningTable, error) {
	var found *models.DiningTable
	r.locked(ctx, func() {
		for _, table := range r.tables {
			if table.Number == number {
				found = &table
				return
			}
		}
	})
	if found == nil {
		return nil, common.NotFound("table %d not found", number)
	}
	return found, nil
}

func (r memTables) GetByOccupant(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error) {
	var found *models.DiningTable
	r.locked(ctx, func() {
		for _, table := range r.tables {
			if table.CurrentUserID != nil && *table.CurrentUserID == userID {
				found = &table
				return
			}
		}
	})
	if found == nil {
		return nil, common.NotFound("you are not seated at any table")
	}
	return found, nil
}

func (r memTables) List(ctx context.Context) ([]*models.DiningTable, error) {
	var out []*models.DiningTable
	r.locked(ctx, func() {
		for _, table := range r.tables {
			out = append(out, &table)
		}
	})
	return out, nil
}

func (r memTables) Update(ctx context.Context, table *models.DiningTable) error {
	r.locked(ctx, func() { r.tables[table.ID] = *table })
	return nil
}

func (r memTables) Delete(ctx context.Context, id uuid.UUID) error {
	r.locked(ctx, func() { delete(r.tables, id) })
	return nil
}

// memOrders implements repositories.OrderRepository.
type memOrders struct{ *memStore }

func (r memOrders) Create(ctx context.Context, order *models.Order) error {
	r.locked(ctx, func() {
		stored := *order
		stored.Lines = nil
		r.orders[order.ID] = stored
	})
	return nil
}

func (r memOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var (
		order models.Order
		ok    bool
	)
	r.locked(ctx, func() { order, ok = r.orders[id] })
	if !ok {
		return nil, common.NotFound("order not found")
	}
	return &order, nil
}

func (r memOrders) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Order, error) {
	var out []*models.Order
	r.locked(ctx, func() {
		for _, order := range r.orders {
			if order.CustomerID != nil && *order.CustomerID == customerID {
				out = append(out, &order)
			}
		}
	})
	return out, nil
}

func (r memOrders) ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]*models.Order, error) {
	var out []*models.Order
	r.locked(ctx, func() {
		for _, order := range r.orders {
			if slices.Contains(statuses, order.Status) {
				out = append(out, &order)
			}
		}
	})
	return out, nil
}

func (r memOrders) HasUnpaidForTable(ctx context.Context, tableID uuid.UUID) (bool, error) {
	var unpaid bool
	r.locked(ctx, func() {
		for _, order := range r.orders {
			if order.TableID == tableID && !order.IsPaid {
				unpaid = true
			}
		}
	})
	return unpaid, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	var ok bool
	r.locked(ctx, func() {
		order, found := r.orders[id]
		if !found || order.Status != from {
			return
		}
		order.Status = to
		r.orders[id] = order
		ok = true
	})
	return ok, nil
}

func (r memOrders) MarkPaid(ctx context.Context, id uuid.UUID, method models.PaymentMethod, processedBy uuid.UUID, paidAt time.Time) (bool, error) {
	var ok bool
	r.locked(ctx, func() {
		order, found := r.orders[id]
		if !found || order.Status != models.OrderReady || order.IsPaid {
			return
		}
		order.Status = models.OrderPaid
		order.IsPaid = true
		order.PaymentMethod = &method
		order.ProcessedByID = &processedBy
		order.PaidAt = &paidAt
		r.orders[id] = order
		ok = true
	})
	return ok, nil
}

// memLines implements repositories.OrderLineRepository.
type memLines struct{ *memStore }

func (r memLines) Create(ctx context.Context, line *models.OrderLine) error {
	r.locked(ctx, func() { r.lines[line.ID] = *line })
	return nil
}

func (r memLines) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderLine, error) {
	var out []*models.OrderLine
	r.locked(ctx, func() {
		for _, line := range r.lines {
			if line.OrderID == orderID {
				out = append(out, &line)
			}
		}
	})
	return out, nil
}

func (r memLines) UpdateNote(ctx context.Context, orderID, lineID uuid.UUID, note *string) (bool, error) {
	var ok bool
	r.locked(ctx, func() {
		line, found := r.lines[lineID]
		if !found || line.OrderID != orderID || r.orders[orderID].Status != models.OrderReceived {
			return
		}
		line.Note = note
		r.lines[lineID] = line
		ok = true
	})
	return ok, nil
}

// countingCache is a CacheService that stores nothing and counts invalidations.
type countingCache struct {
	menuInvalidations   atomic.Int32
	reportInvalidations atomic.Int32
}

func (c *countingCache) GetAvailableMenu(context.Context) ([]*models.MenuItem, error) {
	return nil, nil
}

func (c *countingCache) SetAvailableMenu(context.Context, []*models.MenuItem, time.Duration) error {
	return nil
}

func (c *countingCache) InvalidateMenu(context.Context) error {
	c.menuInvalidations.Add(1)
	return nil
}

func (c *countingCache) GetReport(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (c *countingCache) SetReport(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (c *countingCache) InvalidateReports(context.Context) error {
	c.reportInvalidations.Add(1)
	return nil
}

func (c *countingCache) IsRateLimited(context.Context, string, int) (bool, error) { return false, nil }

func (c *countingCache) IncrementRateLimit(context.Context, string, time.Duration) error { return nil }

func (c *countingCache) ResetRateLimit(context.Context, string) error { return nil }

func (c *countingCache) Ping(context.Context) error { return nil }

func (c *countingCache) Close() error { return nil }
