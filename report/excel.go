package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"fuelstation/models"
)

const salesSheet = "Sales Report"

// RenderSalesExcel produces the spreadsheet form of a sales summary, with
// the company profile as header and the gain/loss table appended below the
// grand total.
func RenderSalesExcel(summary SalesSummary, recon StockReconciliation, settings *models.Settings) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}

	row := 1
	set := func(col string, v interface{}) {
		f.SetCellValue(salesSheet, fmt.Sprintf("%s%d", col, row), v)
	}

	if settings != nil {
		set("A", settings.CompanyName)
		row++
		set("A", settings.Address)
		row++
		set("A", settings.Phone)
		row++
	}
	set("A", "Report ID")
	set("B", summary.ReportID)
	row++
	set("A", "Period")
	set("B", summary.Window.Start.Format("2006-01-02"))
	set("C", summary.Window.End.Format("2006-01-02"))
	row += 2

	set("A", "Product")
	set("B", "Readings")
	set("C", "Volume (ltr)")
	set("D", "Amount")
	row++

	for _, group := range summary.Categories {
		set("A", string(group.Category))
		row++
		for _, p := range group.Products {
			set("A", p.ProductName)
			set("B", p.ReadingCount)
			set("C", p.TotalVolume)
			set("D", p.TotalAmount)
			row++
		}
		set("A", "Subtotal")
		set("C", group.SubtotalVolume)
		set("D", group.SubtotalAmount)
		row += 2
	}

	set("A", "Grand Total")
	set("C", summary.GrandTotalVolume)
	set("D", summary.GrandTotalAmount)
	row++

	if summary.Comparison != nil {
		set("A", "Previous Day")
		set("D", summary.Comparison.PreviousTotal)
		row++
		set("A", "Difference")
		set("D", summary.Comparison.Difference)
		row++
		set("A", "Change %")
		set("D", summary.Comparison.PercentChange)
		row++
	}
	row++

	if len(recon.Rows) > 0 {
		set("A", "Tank")
		set("B", "Book Stock")
		set("C", "Dip Volume")
		set("D", "Discrepancy")
		set("E", "Loss")
		row++
		for _, t := range recon.Rows {
			set("A", t.TankName)
			set("B", t.BookStock)
			set("C", t.DipLiters)
			set("D", t.Discrepancy)
			set("E", t.Loss)
			row++
		}
		set("A", "Total Loss")
		set("E", recon.TotalLoss)
		row++
	}

	set("A", "Generated")
	set("B", time.Now().Format(time.RFC3339))

	return f, nil
}
