package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"restopos/internal/common"
	"restopos/internal/models"

	"github.com/labstack/echo/v4"
)

// ReportService is the reporting surface the handlers need.
type ReportService interface {
	Summary(ctx context.Context, rng models.ReportRange) (*models.ReportSummary, error)
	PopularItems(ctx context.Context, rng models.ReportRange, limit int) ([]*models.PopularItem, error)
	PaymentSummary(ctx context.Context, rng models.ReportRange) (*models.PaymentSummary, error)
	DailySummary(ctx context.Context, rng models.ReportRange) ([]*models.DailySummary, error)
	DailySummaryPDF(ctx context.Context, rng models.ReportRange) ([]byte, error)
}

// ReportHandlers serves the manager reports
type ReportHandlers struct {
	reports ReportService
}

func NewReportHandlers(reports ReportService) *ReportHandlers {
	return &ReportHandlers{reports: reports}
}

func (h *ReportHandlers) Summary(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	summary, err := h.reports.Summary(c.Request().Context(), rng)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *ReportHandlers) PopularItems(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return common.SendValidationError(c, "limit", "limit must be a positive integer")
		}
	}
	items, err := h.reports.PopularItems(c.Request().Context(), rng, limit)
	if err != nil {
		return common.SendError(c, err)
	}
	if items == nil {
		items = []*models.PopularItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ReportHandlers) PaymentSummary(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	summary, err := h.reports.PaymentSummary(c.Request().Context(), rng)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *ReportHandlers) DailySummary(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	days, err := h.reports.DailySummary(c.Request().Context(), rng)
	if err != nil {
		return common.SendError(c, err)
	}
	if days == nil {
		days = []*models.DailySummary{}
	}
	return c.JSON(http.StatusOK, days)
}

// DailySummaryPDF streams the daily summary as a PDF attachment
func (h *ReportHandlers) DailySummaryPDF(c echo.Context) error {
	rng, err := reportRange(c)
	if err != nil {
		return common.SendError(c, err)
	}
	doc, err := h.reports.DailySummaryPDF(c.Request().Context(), rng)
	if err != nil {
		return common.SendError(c, err)
	}
	filename := "daily-summary.pdf"
	if rng.Bounded() {
		filename = fmt.Sprintf("daily-summary_%s_%s.pdf", rng.Start.Format("2006-01-02"), rng.End.Format("2006-01-02"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
