package reports

import (
	"context"
	"sort"
	"time"

	"farmfinance/backend/models"

	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 5
	todayListLimit      = 5
	recentListLimit     = 10
)

// RecordSource is the read side of the record store used by the reports.
// Zero time bounds are open. Results may come back in any order.
type RecordSource interface {
	FindIncomesByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Income, error)
	FindExpensesByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Expense, error)
	FindAllIncomes(ctx context.Context, start, end time.Time) ([]models.Income, error)
	FindAllExpenses(ctx context.Context, start, end time.Time) ([]models.Expense, error)
}

// Reporter reads records from a RecordSource and shapes them for the
// dashboard, profile and admin views. Month and year boundaries follow loc.
type Reporter struct {
	src RecordSource
	loc *time.Location
	now func() time.Time
}

func NewReporter(src RecordSource, loc *time.Location) *Reporter {
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{src: src, loc: loc, now: time.Now}
}

// WithClock returns a copy of r that reads the current time from now.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	c := *r
	c.now = now
	return &c
}

func (r *Reporter) Location() *time.Location {
	return r.loc
}

// Now returns the current time in the reporting location.
func (r *Reporter) Now() time.Time {
	return r.now().In(r.loc)
}

// fetch loads incomes and expenses concurrently. An empty ownerID reads every user's records.
func (r *Reporter) fetch(ctx context.Context, ownerID string, start, end time.Time) ([]models.Income, []models.Expense, error) {
	var (
		incomes  []models.Income
		expenses []models.Expense
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ownerID == "" {
			incomes, err = r.src.FindAllIncomes(ctx, start, end)
		} else {
			incomes, err = r.src.FindIncomesByOwnerAndDateRange(ctx, ownerID, start, end)
		}
		return err
	})
	g.Go(func() error {
		var err error
		if ownerID == "" {
			expenses, err = r.src.FindAllExpenses(ctx, start, end)
		} else {
			expenses, err = r.src.FindExpensesByOwnerAndDateRange(ctx, ownerID, start, end)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return incomes, expenses, nil
}

// Summary totals every record of ownerID.
func (r *Reporter) Summary(ctx context.Context, ownerID string) (models.DashboardSummary, error) {
	incomes, expenses, err := r.fetch(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return models.DashboardSummary{}, err
	}
	t := Totals(incomes, expenses)
	return models.DashboardSummary{TotalExpense: t.TotalExpense, TotalIncome: t.TotalIncome, Profit: t.NetAmount}, nil
}

// Monthly returns the twelve months of year for ownerID, January first.
func (r *Reporter) Monthly(ctx context.Context, ownerID string, year int) ([]models.MonthlyTotal, error) {
	start, end := YearRange(year, r.loc)
	incomes, expenses, err := r.fetch(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	return MonthlyTotals(year, incomes, expenses, r.loc), nil
}

// AdminMonthly is Monthly across every user, with record counts.
func (r *Reporter) AdminMonthly(ctx context.Context, year int) ([]models.MonthlyBreakdown, error) {
	start, end := YearRange(year, r.loc)
	incomes, expenses, err := r.fetch(ctx, "", start, end)
	if err != nil {
		return nil, err
	}
	return MonthlyBreakdowns(year, incomes, expenses, r.loc), nil
}

// MonthlyFinancial returns every month in which ownerID has records, most recent first.
func (r *Reporter) MonthlyFinancial(ctx context.Context, ownerID string) ([]models.MonthlyAggregate, error) {
	incomes, expenses, err := r.fetch(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return MonthlyAggregates(incomes, expenses, r.loc), nil
}

// FinancialSummary returns all-time totals, the previous calendar month's
// totals and the latest activity of ownerID.
func (r *Reporter) FinancialSummary(ctx context.Context, ownerID string) (models.FinancialSummary, error) {
	incomes, expenses, err := r.fetch(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return models.FinancialSummary{}, err
	}
	start, end := PreviousMonthRange(r.Now())
	return models.FinancialSummary{
		PeriodTotals:   Totals(incomes, expenses),
		LastMonth:      TotalsBetween(incomes, expenses, start, end),
		RecentActivity: RecentActivity(incomes, expenses, recentActivityLimit),
	}, nil
}

// ExpenseStats summarises ownerID's expenses by category, for today, for
// the current month and for the recurring ones.
func (r *Reporter) ExpenseStats(ctx context.Context, ownerID string) (models.ExpenseStats, error) {
	expenses, err := r.src.FindExpensesByOwnerAndDateRange(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return models.ExpenseStats{}, err
	}
	now := r.Now()
	dayStart, dayEnd := DayRange(now)
	monthStart, monthEnd := MonthRange(now)

	return models.ExpenseStats{
		CategorySummary: CategoryTotals(expenses),
		TodayExpenses: CountAndTotal(expenses, func(e models.Expense) bool {
			return within(e.Date, dayStart, dayEnd)
		}),
		MonthlyExpenses: CountAndTotal(expenses, func(e models.Expense) bool {
			return within(e.Date, monthStart, monthEnd)
		}),
		RecurringExpenses: CountAndTotal(expenses, func(e models.Expense) bool {
			return e.IsRecurring
		}),
	}, nil
}

// DashboardStats assembles the dashboard overview of ownerID. The today
// and recent lists are newest first.
func (r *Reporter) DashboardStats(ctx context.Context, ownerID string) (models.DashboardStats, error) {
	incomes, expenses, err := r.fetch(ctx, ownerID, time.Time{}, time.Time{})
	if err != nil {
		return models.DashboardStats{}, err
	}
	expenses = newestFirst(expenses, func(e models.Expense) time.Time { return e.Date })
	incomes = newestFirst(incomes, func(i models.Income) time.Time { return i.Date })
	dayStart, dayEnd := DayRange(r.Now())

	stats := models.DashboardStats{
		ExpenseCategories: CategoryTotals(expenses),
		ProductRevenue:    ProductTotals(incomes),
		Today: models.TransactionLists{
			Expenses: []models.Expense{},
			Income:   []models.Income{},
		},
		Recent: models.TransactionLists{
			Expenses: head(expenses, recentListLimit),
			Income:   head(incomes, recentListLimit),
		},
		Totals: models.RecordCounts{Expenses: len(expenses), Income: len(incomes)},
	}

	for _, e := range expenses {
		if within(e.Date, dayStart, dayEnd) && len(stats.Today.Expenses) < todayListLimit {
			stats.Today.Expenses = append(stats.Today.Expenses, e)
		}
		if e.Status == models.ExpensePending {
			stats.Pending.Expenses++
		}
	}
	for _, i := range incomes {
		if within(i.Date, dayStart, dayEnd) && len(stats.Today.Income) < todayListLimit {
			stats.Today.Income = append(stats.Today.Income, i)
		}
		if i.Status == models.IncomePending {
			stats.Pending.Income++
		}
	}
	return stats, nil
}

// newestFirst returns a copy of list sorted by date, latest first.
func newestFirst[T any](list []T, date func(T) time.Time) []T {
	out := append([]T(nil), list...)
	sort.SliceStable(out, func(a, b int) bool { return date(out[a]).After(date(out[b])) })
	return out
}

func head[T any](list []T, n int) []T {
	if list == nil {
		return []T{}
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}
