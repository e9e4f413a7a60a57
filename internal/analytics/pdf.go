package analytics

import (
	"bytes"
	"fmt"
	"time"

	"restopos/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderDailySummaryPDF lays out one row per day followed by a totals row.
func RenderDailySummaryPDF(start, end time.Time, days []*models.DailySummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "DAILY SALES SUMMARY")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", start.Format("02-Jan-2006"), end.Format("02-Jan-2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("02-Jan-2006 15:04 MST")))
	pdf.Ln(10)

	headers := []string{"Date", "Paid orders", "Revenue"}
	colWidths := []float64{60, 50, 60}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	totalOrders := 0
	totalRevenue := decimal.Zero
	for _, day := range days {
		pdf.CellFormat(colWidths[0], 8, day.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", day.TotalOrders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, day.TotalRevenue.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
		totalOrders += day.TotalOrders
		totalRevenue = totalRevenue.Add(day.TotalRevenue)
	}
	if len(days) == 0 {
		pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8, "No paid orders in this period", "1", 0, "C", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(colWidths[0], 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", totalOrders), "1", 0, "R", true, 0, "")
	pdf.CellFormat(colWidths[2], 8, totalRevenue.StringFixed(2), "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
