package services

import (
	"context"
	"errors"
	"testing"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memStore
	cache  *countingCache
	svc    InventoryService
	cheese uuid.UUID
	burger uuid.UUID
}

func (s *InventoryServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.cache = &countingCache{}
	logger := zap.NewNop()
	availability := NewAvailabilityService(s.store, memMenu{s.store}, memRecipes{s.store}, s.cache, logger)
	s.svc = NewInventoryService(s.store, memIngredients{s.store}, memRecipes{s.store}, availability, s.cache, logger)

	s.cheese = s.store.addIngredient("Cheese", 5)
	s.burger = s.store.addMenuItem("Burger", "12.50", map[uuid.UUID]float64{s.cheese: 2})
}

func (s *InventoryServiceTestSuite) TestCreate_Validation() {
	cases := []struct {
		name  string
		in    models.Ingredient
		field string
	}{
		{"blank name", models.Ingredient{Name: "  ", Unit: "kg"}, "name"},
		{"blank unit", models.Ingredient{Name: "Flour"}, "unit"},
		{"negative stock", models.Ingredient{Name: "Flour", Unit: "kg", StockQuantity: -1}, "stock_quantity"},
		{"huge stock", models.Ingredient{Name: "Flour", Unit: "kg", StockQuantity: maxStockQuantity + 1}, "stock_quantity"},
		{"negative threshold", models.Ingredient{Name: "Flour", Unit: "kg", LowStockThreshold: -0.5}, "low_stock_threshold"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := tc.in
			err := s.svc.Create(s.ctx, &in)
			appErr, ok := common.AsAppError(err)
			s.Require().True(ok)
			s.Contains(appErr.Details, tc.field)
		})
	}

	flour := &models.Ingredient{Name: " Flour ", Unit: "kg", StockQuantity: 3}
	s.Require().NoError(s.svc.Create(s.ctx, flour))
	s.NotEqual(uuid.Nil, flour.ID)
	s.Equal("Flour", flour.Name)
}

func (s *InventoryServiceTestSuite) TestUpdate_StockChangeReevaluates() {
	low := 1.0
	updated, err := s.svc.Update(s.ctx, s.cheese, &models.IngredientPatch{StockQuantity: &low})
	s.Require().NoError(err)
	s.Equal(1.0, updated.StockQuantity)
	s.False(s.store.available(s.burger))
	s.Equal(int32(1), s.cache.menuInvalidations.Load())

	threshold := 3.0
	_, err = s.svc.Update(s.ctx, s.cheese, &models.IngredientPatch{LowStockThreshold: &threshold})
	s.Require().NoError(err)
	s.Equal(1, s.store.availabilityWrites(), "threshold edits do not touch availability")
}

func (s *InventoryServiceTestSuite) TestUpdate_InvalidPatchRollsBack() {
	negative := -4.0
	_, err := s.svc.Update(s.ctx, s.cheese, &models.IngredientPatch{StockQuantity: &negative})
	s.True(errors.Is(err, common.ErrValidation))
	s.Equal(5.0, s.store.stock(s.cheese))
	s.True(s.store.available(s.burger))
}

func (s *InventoryServiceTestSuite) TestRestock() {
	_, err := s.svc.Restock(s.ctx, s.cheese, 0)
	s.True(errors.Is(err, common.ErrValidation))

	_, err = s.svc.Restock(s.ctx, s.cheese, -10)
	s.True(errors.Is(err, common.ErrConflict))
	s.Equal(5.0, s.store.stock(s.cheese))

	ing, err := s.svc.Restock(s.ctx, s.cheese, -4)
	s.Require().NoError(err)
	s.Equal(1.0, ing.StockQuantity)
	s.False(s.store.available(s.burger))

	ing, err = s.svc.Restock(s.ctx, s.cheese, 9)
	s.Require().NoError(err)
	s.Equal(10.0, ing.StockQuantity)
	s.True(s.store.available(s.burger))
	s.Equal(int32(2), s.cache.menuInvalidations.Load())

	_, err = s.svc.Restock(s.ctx, uuid.New(), 1)
	s.True(errors.Is(err, common.ErrNotFound))
}

func (s *InventoryServiceTestSuite) TestDelete_RefusesReferencedIngredient() {
	err := s.svc.Delete(s.ctx, s.cheese)
	s.True(errors.Is(err, common.ErrConflict))
	s.Equal("ingredient 'Cheese' is used by 1 recipe line(s)", err.Error())

	unused := s.store.addIngredient("Saffron", 1)
	s.Require().NoError(s.svc.Delete(s.ctx, unused))
	_, err = s.svc.Get(s.ctx, unused)
	s.True(errors.Is(err, common.ErrNotFound))
}

func (s *InventoryServiceTestSuite) TestListLowStock() {
	ing := s.store.ingredients[s.cheese]
	ing.LowStockThreshold = 10
	s.store.ingredients[s.cheese] = ing
	s.store.addIngredient("Bun", 50)

	low, err := s.svc.ListLowStock(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(low, 1)
	s.Equal("Cheese", low[0].Name)
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}
