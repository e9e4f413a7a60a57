package services

import (
	"context"
	"errors"

	"restopos/internal/common"
	"restopos/internal/models"
	"restopos/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxSeats = 50

type TableService interface {
	Create(ctx context.Context, table *models.DiningTable) error
	Get(ctx context.Context, id uuid.UUID) (*models.DiningTable, error)
	List(ctx context.Context) ([]*models.DiningTable, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.TablePatch) (*models.DiningTable, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Sit(ctx context.Context, number int, userID uuid.UUID) (*models.DiningTable, error)
	Leave(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error)
}

type tableService struct {
	tx        repositories.Transactor
	tableRepo repositories.TableRepository
	orderRepo repositories.OrderRepository
	logger    *zap.Logger
}

func NewTableService(tx repositories.Transactor, tableRepo repositories.TableRepository, orderRepo repositories.OrderRepository, logger *zap.Logger) TableService {
	return &tableService{tx: tx, tableRepo: tableRepo, orderRepo: orderRepo, logger: logger}
}

func validateTable(table *models.DiningTable) error {
	if table.Number <= 0 {
		return common.Invalid("number", "number must be positive")
	}
	if err := common.ValidatePositiveInteger(table.Seats, "seats", maxSeats); err != nil {
		return common.Invalid("seats", err.Error())
	}
	if !table.Status.Valid() {
		return common.Invalid("status", "status must be one of AVAILABLE, OCCUPIED, RESERVED, CLOSED")
	}
	return nil
}

func (s *tableService) Create(ctx context.Context, table *models.DiningTable) error {
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	if err := validateTable(table); err != nil {
		return err
	}
	table.ID = uuid.New()
	table.CurrentUserID = nil
	return s.tableRepo.Create(ctx, table)
}

func (s *tableService) Get(ctx context.Context, id uuid.UUID) (*models.DiningTable, error) {
	return s.tableRepo.GetByID(ctx, id)
}

func (s *tableService) List(ctx context.Context) ([]*models.DiningTable, error) {
	return s.tableRepo.List(ctx)
}

// Update edits seats or status. Marking a table AVAILABLE also frees its occupant.
func (s *tableService) Update(ctx context.Context, id uuid.UUID, patch *models.TablePatch) (*models.DiningTable, error) {
	var table *models.DiningTable
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		table, err = s.tableRepo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(table)
		if err := validateTable(table); err != nil {
			return err
		}
		if table.Status == models.TableAvailable {
			table.CurrentUserID = nil
		}
		return s.tableRepo.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tableRepo.Delete(ctx, id)
}

// Sit seats userID at the table with the given number. A customer holds at most one table.
func (s *tableService) Sit(ctx context.Context, number int, userID uuid.UUID) (*models.DiningTable, error) {
	var table *models.DiningTable
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		table, err = s.tableRepo.LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if !table.Status.AcceptsOrders() {
			return common.Conflict("table %d is %s", table.Number, table.Status)
		}
		if table.CurrentUserID != nil {
			if *table.CurrentUserID == userID {
				return nil
			}
			return common.Conflict("table %d is occupied", table.Number)
		}

		current, err := s.tableRepo.GetByOccupant(ctx, userID)
		switch {
		case err == nil:
			return common.Conflict("you are already seated at table %d", current.Number)
		case !errors.Is(err, common.ErrNotFound):
			return err
		}

		table.Status = models.TableOccupied
		table.CurrentUserID = &userID
		return s.tableRepo.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer seated", zap.Int("table", table.Number), zap.String("user_id", userID.String()))
	return table, nil
}

// Leave frees the caller's table once every order placed at it is paid.
func (s *tableService) Leave(ctx context.Context, userID uuid.UUID) (*models.DiningTable, error) {
	var table *models.DiningTable
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.tableRepo.GetByOccupant(ctx, userID)
		if err != nil {
			return err
		}
		table, err = s.tableRepo.LockByID(ctx, current.ID)
		if err != nil {
			return err
		}
		if table.CurrentUserID == nil || *table.CurrentUserID != userID {
			return common.NotFound("you are not seated at any table")
		}
		unpaid, err := s.orderRepo.HasUnpaidForTable(ctx, table.ID)
		if err != nil {
			return err
		}
		if unpaid {
			return common.Conflict("table %d has unpaid orders", table.Number)
		}

		table.Status = models.TableAvailable
		table.CurrentUserID = nil
		return s.tableRepo.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer left", zap.Int("table", table.Number), zap.String("user_id", userID.String()))
	return table, nil
}
