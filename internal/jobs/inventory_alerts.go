package jobs

import (
	"context"
	"sync"
	"time"

	"restopos/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LowStockSource lists ingredients whose stock is under their alert threshold.
type LowStockSource interface {
	ListLowStock(ctx context.Context) ([]*models.LowStockItem, error)
}

// AlertNotifier delivers newly raised alerts to whoever is listening.
type AlertNotifier interface {
	NotifyLowStock(ctx context.Context, alert *models.StockAlert) error
}

type InventoryAlertService struct {
	source   LowStockSource
	notifier AlertNotifier
	logger   *zap.Logger

	mu      sync.Mutex
	alerted map[uuid.UUID]struct{}
}

type InventoryAlert struct {
	IngredientID   uuid.UUID
	IngredientName string
	CurrentStock   float64
	Threshold      float64
	// New is false when the previous sweep already reported this ingredient.
	New bool
}

// NewInventoryAlertService builds the sweep. notifier may be nil, in which case
// alerts are only logged.
func NewInventoryAlertService(source LowStockSource, notifier AlertNotifier, logger *zap.Logger) *InventoryAlertService {
	return &InventoryAlertService{
		source:   source,
		notifier: notifier,
		logger:   logger,
		alerted:  make(map[uuid.UUID]struct{}),
	}
}

// CheckLowStock returns an alert for every ingredient currently under its threshold.
// Ingredients that recovered since the last sweep are forgotten, so they alert again
// the next time they run low.
func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	items, err := a.source.ListLowStock(ctx)
	if err != nil {
		a.logger.Error("failed to list low stock ingredients", zap.Error(err))
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current := make(map[uuid.UUID]struct{}, len(items))
	alerts := make([]InventoryAlert, 0, len(items))
	for _, item := range items {
		_, seen := a.alerted[item.ID]
		current[item.ID] = struct{}{}
		alerts = append(alerts, InventoryAlert{
			IngredientID:   item.ID,
			IngredientName: item.Name,
			CurrentStock:   item.StockQuantity,
			Threshold:      item.LowStockThreshold,
			New:            !seen,
		})
	}
	a.alerted = current
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	if len(alerts) == 0 {
		a.logger.Debug("no low stock alerts")
		return
	}

	for _, alert := range alerts {
		fields := []zap.Field{
			zap.String("ingredient_id", alert.IngredientID.String()),
			zap.String("ingredient", alert.IngredientName),
			zap.Float64("stock_quantity", alert.CurrentStock),
			zap.Float64("low_stock_threshold", alert.Threshold),
		}
		if alert.New {
			a.logger.Warn("ingredient is running low", fields...)
		} else {
			a.logger.Debug("ingredient still low", fields...)
		}
	}
}

// ScheduledLowStockCheck is the periodic sweep run by the job scheduler.
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		return err
	}
	a.LogLowStockAlerts(alerts)
	a.notify(ctx, alerts)
	return nil
}

// notify forwards new alerts. Delivery failures are logged and do not fail the sweep.
func (a *InventoryAlertService) notify(ctx context.Context, alerts []InventoryAlert) {
	if a.notifier == nil {
		return
	}
	now := time.Now().UTC()
	for _, alert := range alerts {
		if !alert.New {
			continue
		}
		err := a.notifier.NotifyLowStock(ctx, &models.StockAlert{
			IngredientID:   alert.IngredientID,
			IngredientName: alert.IngredientName,
			StockQuantity:  alert.CurrentStock,
			Threshold:      alert.Threshold,
			RaisedAt:       now,
		})
		if err != nil {
			a.logger.Error("failed to deliver stock alert",
				zap.String("ingredient", alert.IngredientName), zap.Error(err))
		}
	}
}
