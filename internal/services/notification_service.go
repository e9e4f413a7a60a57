package services

import (
	"context"
	"encoding/json"
	"fmt"

	"restopos/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	AlertChannel   = "restopos:alerts:low-stock"
	recentAlertKey = "restopos:alerts:recent"
	maxRecentAlert = 100
)

// NotificationService fans stock alerts out to subscribers and keeps a short history.
type NotificationService interface {
	NotifyLowStock(ctx context.Context, alert *models.StockAlert) error
	RecentAlerts(ctx context.Context, limit int) ([]*models.StockAlert, error)
	Close() error
}

type notificationService struct {
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewNotificationService creates a notification service with its own Redis client.
func NewNotificationService(redisAddr, redisPassword string, redisDB int, logger *zap.Logger) NotificationService {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return NewNotificationServiceWithClient(client, logger)
}

func NewNotificationServiceWithClient(client *redis.Client, logger *zap.Logger) NotificationService {
	return &notificationService{redisClient: client, logger: logger}
}

// NotifyLowStock publishes alert on AlertChannel and records it in the recent list.
func (s *notificationService) NotifyLowStock(ctx context.Context, alert *models.StockAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal stock alert: %w", err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Publish(ctx, AlertChannel, data)
		pipe.LPush(ctx, recentAlertKey, data)
		pipe.LTrim(ctx, recentAlertKey, 0, maxRecentAlert-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish stock alert: %w", err)
	}
	s.logger.Info("stock alert published",
		zap.String("alert_id", alert.ID.String()),
		zap.String("ingredient", alert.IngredientName))
	return nil
}

// RecentAlerts returns up to limit alerts, newest first.
func (s *notificationService) RecentAlerts(ctx context.Context, limit int) ([]*models.StockAlert, error) {
	if limit <= 0 || limit > maxRecentAlert {
		limit = maxRecentAlert
	}
	raw, err := s.redisClient.LRange(ctx, recentAlertKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent alerts: %w", err)
	}

	alerts := make([]*models.StockAlert, 0, len(raw))
	for _, entry := range raw {
		var alert models.StockAlert
		if err := json.Unmarshal([]byte(entry), &alert); err != nil {
			s.logger.Warn("skipping malformed stock alert", zap.Error(err))
			continue
		}
		alerts = append(alerts, &alert)
	}
	return alerts, nil
}

func (s *notificationService) Close() error {
	return s.redisClient.Close()
}
