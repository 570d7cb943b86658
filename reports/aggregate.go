// Package reports groups income and expense records into the monthly,
// category and product rollups shown on the dashboards.
//
// The functions in this file are pure: they never fail, and an empty input
// yields zero-valued output rather than an error.
package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"farmfinance/backend/models"

	"github.com/shopspring/decimal"
)

// SamplesPerMonth bounds the transactions listed under a MonthlyAggregate.
const SamplesPerMonth = 5

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of m, or "" when m is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// ResolveYear parses a year query value. Anything that is not an integer in
// 1..9999 falls back to the current year in now's location.
func ResolveYear(raw string, now time.Time) int {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < 1 || year > 9999 {
		return now.Year()
	}
	return year
}

// YearRange returns the first and last instant of year in loc.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// DayRange returns the first and last instant of the day containing now.
func DayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthRange returns the first and last instant of the month containing now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// PreviousMonthRange returns the first and last instant of the calendar month
// before the one containing now.
func PreviousMonthRange(now time.Time) (time.Time, time.Time) {
	thisMonth, _ := MonthRange(now)
	return MonthRange(thisMonth.AddDate(0, -1, 0))
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func add(sum decimal.Decimal, v float64) decimal.Decimal {
	return sum.Add(decimal.NewFromFloat(v))
}

func float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type monthBucket struct {
	income, expenses   decimal.Decimal
	incomeN, expensesN int
}

func bucketByMonth(year int, incomes []models.Income, expenses []models.Expense, loc *time.Location) [12]monthBucket {
	var buckets [12]monthBucket
	for _, i := range incomes {
		d := i.Date.In(loc)
		if d.Year() != year {
			continue
		}
		b := &buckets[d.Month()-1]
		b.income = add(b.income, i.TotalAmount)
		b.incomeN++
	}
	for _, e := range expenses {
		d := e.Date.In(loc)
		if d.Year() != year {
			continue
		}
		b := &buckets[d.Month()-1]
		b.expenses = add(b.expenses, e.Amount)
		b.expensesN++
	}
	return buckets
}

// MonthlyTotals returns exactly twelve entries for year, January first.
// Records are bucketed by the month of their date in loc; records outside
// year are ignored.
func MonthlyTotals(year int, incomes []models.Income, expenses []models.Expense, loc *time.Location) []models.MonthlyTotal {
	buckets := bucketByMonth(year, incomes, expenses, loc)
	out := make([]models.MonthlyTotal, 12)
	for i, b := range buckets {
		out[i] = models.MonthlyTotal{
			Month:     i + 1,
			MonthName: monthNames[i],
			Income:    float(b.income),
			Expenses:  float(b.expenses),
			Profit:    float(b.income.Sub(b.expenses)),
		}
	}
	return out
}

// MonthlyBreakdowns is MonthlyTotals with per-month record counts.
func MonthlyBreakdowns(year int, incomes []models.Income, expenses []models.Expense, loc *time.Location) []models.MonthlyBreakdown {
	buckets := bucketByMonth(year, incomes, expenses, loc)
	out := make([]models.MonthlyBreakdown, 12)
	for i, b := range buckets {
		out[i] = models.MonthlyBreakdown{
			Month:         i + 1,
			MonthName:     monthNames[i],
			Income:        float(b.income),
			IncomeCount:   b.incomeN,
			Expenses:      float(b.expenses),
			ExpensesCount: b.expensesN,
			Profit:        float(b.income.Sub(b.expenses)),
		}
	}
	return out
}

// Totals sums incomes by total amount and expenses by amount.
func Totals(incomes []models.Income, expenses []models.Expense) models.PeriodTotals {
	in, out := decimal.Zero, decimal.Zero
	for _, i := range incomes {
		in = add(in, i.TotalAmount)
	}
	for _, e := range expenses {
		out = add(out, e.Amount)
	}
	return models.PeriodTotals{
		TotalIncome:  float(in),
		TotalExpense: float(out),
		NetAmount:    float(in.Sub(out)),
	}
}

// TotalsBetween is Totals restricted to records dated within [start, end].
func TotalsBetween(incomes []models.Income, expenses []models.Expense, start, end time.Time) models.PeriodTotals {
	var (
		in  []models.Income
		out []models.Expense
	)
	for _, i := range incomes {
		if within(i.Date, start, end) {
			in = append(in, i)
		}
	}
	for _, e := range expenses {
		if within(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return Totals(in, out)
}

type rollup struct {
	total    decimal.Decimal
	quantity decimal.Decimal
	count    int
}

// sortedKeys orders keys by total descending, then by name.
func sortedKeys(groups map[string]*rollup) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if c := groups[keys[a]].total.Cmp(groups[keys[b]].total); c != 0 {
			return c > 0
		}
		return keys[a] < keys[b]
	})
	return keys
}

// CategoryTotals groups expenses by category, largest total first.
func CategoryTotals(expenses []models.Expense) []models.CategoryTotal {
	groups := map[string]*rollup{}
	for _, e := range expenses {
		g, ok := groups[e.Category]
		if !ok {
			g = &rollup{}
			groups[e.Category] = g
		}
		g.total = add(g.total, e.Amount)
		g.count++
	}

	out := make([]models.CategoryTotal, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		g := groups[k]
		out = append(out, models.CategoryTotal{Category: k, Total: float(g.total), Count: g.count})
	}
	return out
}

// ProductTotals groups incomes by product, largest total first.
func ProductTotals(incomes []models.Income) []models.ProductTotal {
	groups := map[string]*rollup{}
	for _, i := range incomes {
		g, ok := groups[i.Product]
		if !ok {
			g = &rollup{}
			groups[i.Product] = g
		}
		g.total = add(g.total, i.TotalAmount)
		g.quantity = add(g.quantity, i.Quantity)
		g.count++
	}

	out := make([]models.ProductTotal, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		g := groups[k]
		out = append(out, models.ProductTotal{
			Product:  k,
			Total:    float(g.total),
			Quantity: g.quantity.InexactFloat64(),
			Count:    g.count,
		})
	}
	return out
}

// CountAndTotal sums the expenses matching keep.
func CountAndTotal(expenses []models.Expense, keep func(models.Expense) bool) models.CountTotal {
	var (
		ct  models.CountTotal
		sum = decimal.Zero
	)
	for _, e := range expenses {
		if keep(e) {
			ct.Count++
			sum = add(sum, e.Amount)
		}
	}
	ct.Total = float(sum)
	return ct
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func optionalNote(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}

// MonthlyAggregates groups every record into calendar months of loc and
// returns them most recent first. Each month lists up to SamplesPerMonth of
// its newest transactions.
func MonthlyAggregates(incomes []models.Income, expenses []models.Expense, loc *time.Location) []models.MonthlyAggregate {
	type acc struct {
		agg     models.MonthlyAggregate
		in, out decimal.Decimal
		start   time.Time
		samples []models.TransactionSample
	}
	months := map[string]*acc{}
	bucket := func(date time.Time) *acc {
		d := date.In(loc)
		key := monthKey(d)
		a, ok := months[key]
		if !ok {
			a = &acc{
				agg: models.MonthlyAggregate{
					Month:     key,
					MonthName: MonthName(d.Month()),
					Year:      d.Year(),
				},
				start: time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc),
			}
			months[key] = a
		}
		return a
	}

	for _, i := range incomes {
		a := bucket(i.Date)
		a.in = add(a.in, i.TotalAmount)
		a.samples = append(a.samples, models.TransactionSample{
			Date: i.Date, Amount: i.TotalAmount, Type: models.SampleIncome, Category: i.Product, Note: optionalNote(i.Note),
		})
	}
	for _, e := range expenses {
		a := bucket(e.Date)
		a.out = add(a.out, e.Amount)
		a.samples = append(a.samples, models.TransactionSample{
			Date: e.Date, Amount: e.Amount, Type: models.SampleExpense, Category: e.Category, Note: optionalNote(e.Note),
		})
	}

	list := make([]*acc, 0, len(months))
	for _, a := range months {
		sort.SliceStable(a.samples, func(x, y int) bool { return a.samples[x].Date.After(a.samples[y].Date) })
		if len(a.samples) > SamplesPerMonth {
			a.samples = a.samples[:SamplesPerMonth]
		}
		a.agg.TotalIncome = float(a.in)
		a.agg.TotalExpenses = float(a.out)
		a.agg.NetProfit = float(a.in.Sub(a.out))
		a.agg.Transactions = a.samples
		list = append(list, a)
	}
	sort.Slice(list, func(x, y int) bool { return list[x].start.After(list[y].start) })

	out := make([]models.MonthlyAggregate, len(list))
	for i, a := range list {
		out[i] = a.agg
	}
	return out
}

// RecentActivity merges incomes and expenses, newest first, keeping at most n.
// An income is described by its note and categorised by its product.
func RecentActivity(incomes []models.Income, expenses []models.Expense, n int) []models.Activity {
	all := make([]models.Activity, 0, len(incomes)+len(expenses))
	for _, e := range expenses {
		all = append(all, models.Activity{
			ID: e.ID, Date: e.Date, Amount: e.Amount, Description: e.Note, Category: e.Category, Type: models.KindExpense,
		})
	}
	for _, i := range incomes {
		all = append(all, models.Activity{
			ID: i.ID, Date: i.Date, Amount: i.TotalAmount, Description: i.Note, Category: i.Product, Type: models.KindIncome,
		})
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Date.After(all[b].Date) })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
