package middleware

import (
	"context"
	"net/http"
	"time"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// AuditMiddleware records who changed what. Reads are skipped unless they fail.
type AuditMiddleware struct {
	logger   *zap.Logger
	recorder AuditRecorder
}

// NewAuditMiddleware logs every audited request and, when recorder is non-nil,
// stores it as well.
func NewAuditMiddleware(logger *zap.Logger, recorder AuditRecorder) *AuditMiddleware {
	return &AuditMiddleware{logger: logger.Named("audit"), recorder: recorder}
}

func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			method := c.Request().Method
			status := c.Response().Status
			if method == http.MethodGet && err == nil && status < http.StatusBadRequest {
				return err
			}

			entry := &models.AuditLog{
				Action: method + " " + c.Path(),
				URI:    c.Request().RequestURI,
				Status: status,
			}
			fields := []zap.Field{
				zap.String("action", entry.Action),
				zap.String("uri", entry.URI),
				zap.Int("status", status),
			}
			ctx := c.Request().Context()
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				entry.UserID = &userID
				fields = append(fields, zap.String("user_id", userID.String()))
			}
			if role, ok := common.GetRoleFromContext(ctx); ok {
				entry.Role = role
				fields = append(fields, zap.String("role", string(role)))
			}
			if err != nil {
				entry.Error = err.Error()
				fields = append(fields, zap.Error(err))
			}
			m.logger.Info("request audited", fields...)
			m.record(ctx, entry)
			return err
		}
	}
}

// record stores entry even if the client has already gone away.
func (m *AuditMiddleware) record(ctx context.Context, entry *models.AuditLog) {
	if m.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := m.recorder.Record(ctx, entry); err != nil {
		m.logger.Error("failed to store audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

// RequestLogger sends one structured line per request to logger.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.RequestID != "" {
				fields = append(fields, zap.String("request_id", v.RequestID))
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
