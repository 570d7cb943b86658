package reports

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"farmfinance/backend/models"

	"github.com/xuri/excelize/v2"
)

const (
	monthlySheet      = "Monthly"
	transactionsSheet = "Transactions"
)

// ExportFilename is the attachment name of a yearly workbook.
func ExportFilename(year int) string {
	return fmt.Sprintf("farm-finance-%d.xlsx", year)
}

// ExportYear writes an .xlsx workbook for ownerID's records in year: one sheet
// with the twelve monthly totals and one listing every transaction, newest first.
func (r *Reporter) ExportYear(ctx context.Context, ownerID string, year int, w io.Writer) error {
	start, end := YearRange(year, r.loc)
	incomes, expenses, err := r.fetch(ctx, ownerID, start, end)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", monthlySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeMonthlySheet(f, MonthlyTotals(year, incomes, expenses, r.loc)); err != nil {
		return err
	}

	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeTransactionsSheet(f, incomes, expenses, r.loc); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, fmt.Sprintf("%c%d", 'A'+i, row), v); err != nil {
			return err
		}
	}
	return nil
}

func writeMonthlySheet(f *excelize.File, months []models.MonthlyTotal) error {
	if err := writeHeader(f, monthlySheet, []string{"Month", "Income", "Expenses", "Profit"}); err != nil {
		return err
	}
	totals := models.MonthlyTotal{MonthName: "Total"}
	for idx, m := range months {
		if err := writeRow(f, monthlySheet, idx+2, m.MonthName, m.Income, m.Expenses, m.Profit); err != nil {
			return err
		}
		totals.Income += m.Income
		totals.Expenses += m.Expenses
		totals.Profit += m.Profit
	}
	if err := writeRow(f, monthlySheet, len(months)+2, totals.MonthName, totals.Income, totals.Expenses, totals.Profit); err != nil {
		return err
	}
	return f.SetColWidth(monthlySheet, "A", "D", 14)
}

func writeTransactionsSheet(f *excelize.File, incomes []models.Income, expenses []models.Expense, loc *time.Location) error {
	headers := []string{"Date", "Type", "Category", "Amount", "Status", "Note"}
	if err := writeHeader(f, transactionsSheet, headers); err != nil {
		return err
	}

	type line struct {
		date                         time.Time
		kind, category, status, note string
		amount                       float64
	}
	lines := make([]line, 0, len(incomes)+len(expenses))
	for _, i := range incomes {
		lines = append(lines, line{i.Date, models.SampleIncome, i.Product, i.Status, i.Note, i.TotalAmount})
	}
	for _, e := range expenses {
		lines = append(lines, line{e.Date, models.SampleExpense, e.Category, e.Status, e.Note, e.Amount})
	}
	sort.SliceStable(lines, func(a, b int) bool { return lines[a].date.After(lines[b].date) })

	for idx, l := range lines {
		err := writeRow(f, transactionsSheet, idx+2,
			l.date.In(loc).Format("2006-01-02"), l.kind, l.category, l.amount, l.status, l.note)
		if err != nil {
			return err
		}
	}

	if err := f.SetColWidth(transactionsSheet, "A", "E", 14); err != nil {
		return err
	}
	return f.SetColWidth(transactionsSheet, "F", "F", 40)
}
