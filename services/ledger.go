package services

import (
	"context"
	"errors"
	"time"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/store"
)

// LedgerService owns every write to expenses and incomes: defaults, derived
// income totals and ownership checks all happen here.
type LedgerService struct {
	store *store.Store
	loc   *time.Location
}

// NewLedgerService reads dates sent without an offset in loc, the same
// location the reports bucket months in. A nil loc means time.Local.
func NewLedgerService(s *store.Store, loc *time.Location) *LedgerService {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerService{store: s, loc: loc}
}

// ExpensePage is one page of an expense listing.
type ExpensePage struct {
	Items []models.Expense
	Total int
	Query models.ListQuery
}

type IncomePage struct {
	Items []models.Income
	Total int
	Query models.ListQuery
}

func (l *LedgerService) CreateExpense(ctx context.Context, caller models.Identity, in models.ExpenseInput) (models.Expense, error) {
	if err := in.Validate(false); err != nil {
		return models.Expense{}, err
	}

	e := models.Expense{UserID: caller.UserID}
	in.ApplyTo(&e, l.loc)
	models.ApplyExpenseDefaults(&e)

	if err := l.store.CreateExpense(ctx, &e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func (l *LedgerService) ListExpenses(ctx context.Context, caller models.Identity, f models.ExpenseFilter) (ExpensePage, error) {
	f.Normalize()
	items, total, err := l.store.ListExpenses(ctx, caller.UserID, f)
	if err != nil {
		return ExpensePage{}, err
	}
	return ExpensePage{Items: items, Total: total, Query: f.ListQuery}, nil
}

// ExpensesBetween returns the caller's expenses dated within [start, end], newest first.
func (l *LedgerService) ExpensesBetween(ctx context.Context, caller models.Identity, start, end time.Time) ([]models.Expense, error) {
	if start.IsZero() || end.IsZero() {
		return nil, models.NewError(models.ErrBadRequest, "Both startDate and endDate are required")
	}
	return l.store.FindExpensesByOwnerAndDateRange(ctx, caller.UserID, start, end)
}

// GetExpense loads an expense owned by the caller.
func (l *LedgerService) GetExpense(ctx context.Context, caller models.Identity, id string) (models.Expense, error) {
	e, err := l.store.GetExpense(ctx, id)
	if err != nil {
		return e, expenseLookup(err)
	}
	if err := requireOwner(caller, e.UserID, "expense"); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func (l *LedgerService) UpdateExpense(ctx context.Context, caller models.Identity, id string, in models.ExpenseInput) (models.Expense, error) {
	e, err := l.GetExpense(ctx, caller, id)
	if err != nil {
		return e, err
	}
	if err := in.Validate(true); err != nil {
		return models.Expense{}, err
	}

	in.ApplyTo(&e, l.loc)
	models.ApplyExpenseDefaults(&e)
	if err := l.store.UpdateExpense(ctx, &e); err != nil {
		return models.Expense{}, expenseLookup(err)
	}
	return e, nil
}

// SetExpenseStatus changes only the status of an expense.
func (l *LedgerService) SetExpenseStatus(ctx context.Context, caller models.Identity, id, status string) (models.Expense, error) {
	if status == "" {
		v := models.NewValidationError()
		v.Add("status", "Status is required")
		return models.Expense{}, v
	}
	return l.UpdateExpense(ctx, caller, id, models.ExpenseInput{Status: &status})
}

func (l *LedgerService) DeleteExpense(ctx context.Context, caller models.Identity, id string) error {
	if _, err := l.GetExpense(ctx, caller, id); err != nil {
		return err
	}
	return expenseLookup(l.store.DeleteExpense(ctx, id))
}

func (l *LedgerService) CreateIncome(ctx context.Context, caller models.Identity, in models.IncomeInput) (models.Income, error) {
	if err := in.Validate(false); err != nil {
		return models.Income{}, err
	}

	i := models.Income{UserID: caller.UserID}
	in.ApplyTo(&i, l.loc)
	models.ApplyIncomeDefaults(&i)
	models.ApplyIncomeDerivedFields(&i, nil, in.TotalAmount != nil)

	if err := l.store.CreateIncome(ctx, &i); err != nil {
		return models.Income{}, err
	}
	return i, nil
}

func (l *LedgerService) ListIncomes(ctx context.Context, caller models.Identity, f models.IncomeFilter) (IncomePage, error) {
	f.Normalize()
	items, total, err := l.store.ListIncomes(ctx, caller.UserID, f)
	if err != nil {
		return IncomePage{}, err
	}
	return IncomePage{Items: items, Total: total, Query: f.ListQuery}, nil
}

func (l *LedgerService) GetIncome(ctx context.Context, caller models.Identity, id string) (models.Income, error) {
	i, err := l.store.GetIncome(ctx, id)
	if err != nil {
		return i, incomeLookup(err)
	}
	if err := requireOwner(caller, i.UserID, "income"); err != nil {
		return models.Income{}, err
	}
	return i, nil
}

// UpdateIncome merges the patch and recomputes the derived totals against
// the stored record.
func (l *LedgerService) UpdateIncome(ctx context.Context, caller models.Identity, id string, in models.IncomeInput) (models.Income, error) {
	i, err := l.GetIncome(ctx, caller, id)
	if err != nil {
		return i, err
	}
	if err := in.Validate(true); err != nil {
		return models.Income{}, err
	}

	prev := i
	in.ApplyTo(&i, l.loc)
	models.ApplyIncomeDefaults(&i)
	models.ApplyIncomeDerivedFields(&i, &prev, in.TotalAmount != nil)

	if err := l.store.UpdateIncome(ctx, &i); err != nil {
		return models.Income{}, incomeLookup(err)
	}
	return i, nil
}

func (l *LedgerService) DeleteIncome(ctx context.Context, caller models.Identity, id string) error {
	if _, err := l.GetIncome(ctx, caller, id); err != nil {
		return err
	}
	return incomeLookup(l.store.DeleteIncome(ctx, id))
}

// AllExpenses lists every user's expenses for the admin console.
func (l *LedgerService) AllExpenses(ctx context.Context) ([]models.ExpenseWithUser, error) {
	return l.store.ListAllExpensesWithUsers(ctx)
}

func (l *LedgerService) AllIncomes(ctx context.Context) ([]models.IncomeWithUser, error) {
	return l.store.ListAllIncomesWithUsers(ctx)
}

// AdminDeleteExpense removes any user's expense.
func (l *LedgerService) AdminDeleteExpense(ctx context.Context, admin models.Identity, id string) error {
	if err := l.store.DeleteExpense(ctx, id); err != nil {
		return expenseLookup(err)
	}
	log := logger.FromContext(ctx)
	log.Info().Stringer("admin", admin).Str("expense_id", id).Msg("Expense deleted by admin")
	return nil
}

func (l *LedgerService) AdminDeleteIncome(ctx context.Context, admin models.Identity, id string) error {
	if err := l.store.DeleteIncome(ctx, id); err != nil {
		return incomeLookup(err)
	}
	log := logger.FromContext(ctx)
	log.Info().Stringer("admin", admin).Str("income_id", id).Msg("Income deleted by admin")
	return nil
}

func expenseLookup(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.ErrNotFound, "Expense not found")
	}
	return err
}

func incomeLookup(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.ErrNotFound, "Income not found")
	}
	return err
}
