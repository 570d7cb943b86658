package store

import (
	"context"
	"fmt"
	"time"

	"farmfinance/backend/models"
)

const expenseColumns = `id, user_id, amount, category, date, note, payment_method, is_recurring, tags, status, created_at, updated_at`

var expenseSortColumns = map[string]string{
	"date":          "date",
	"amount":        "amount",
	"category":      "category",
	"status":        "status",
	"paymentMethod": "payment_method",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var (
		e    models.Expense
		tags string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Date, &e.Note, &e.PaymentMethod,
		&e.IsRecurring, &tags, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	e.Tags = decodeTags(tags)
	return e, err
}

func (s *Store) selectExpenses(ctx context.Context, query string, args ...interface{}) ([]models.Expense, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateExpense inserts e, assigning its id and timestamps.
func (s *Store) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = newID()
	}
	now := s.timestamp()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Date = utc(e.Date)

	tags, err := encodeJSON(e.Tags)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount, e.Category, e.Date, e.Note, e.PaymentMethod, e.IsRecurring, tags, e.Status,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// UpdateExpense writes every mutable field. The owner never changes.
func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense) error {
	e.UpdatedAt = s.timestamp()
	e.Date = utc(e.Date)

	tags, err := encodeJSON(e.Tags)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	res, err := s.exec(ctx, `UPDATE expenses SET amount = ?, category = ?, date = ?, note = ?, payment_method = ?,
		is_recurring = ?, tags = ?, status = ?, updated_at = ? WHERE id = ?`,
		e.Amount, e.Category, e.Date, e.Note, e.PaymentMethod, e.IsRecurring, tags, e.Status, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res, "update expense")
}

func (s *Store) GetExpense(ctx context.Context, id string) (models.Expense, error) {
	e, err := scanExpense(s.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return e, notFound(err, "get expense")
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireAffected(res, "delete expense")
}

// ListExpenses returns one page of an owner's expenses and the total match count.
func (s *Store) ListExpenses(ctx context.Context, ownerID string, f models.ExpenseFilter) ([]models.Expense, int, error) {
	f.Normalize()

	where := ` WHERE user_id = ?`
	args := []interface{}{ownerID}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.IsRecurring != nil {
		where += ` AND is_recurring = ?`
		args = append(args, *f.IsRecurring)
	}
	clause, rangeArgs := dateRange("date", f.StartDate, f.EndDate)
	where += clause
	args = append(args, rangeArgs...)
	if tc, tagArgs := tagClause("tags", f.Tags); tc != "" {
		where += ` AND ` + tc
		args = append(args, tagArgs...)
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM expenses`+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses` + where +
		` ORDER BY ` + orderBy(f.ListQuery, expenseSortColumns, "date DESC, id DESC") + ` LIMIT ? OFFSET ?`
	expenses, err := s.selectExpenses(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// FindExpensesByOwnerAndDateRange returns an owner's expenses dated within
// [start, end], newest first. Zero bounds are open.
func (s *Store) FindExpensesByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Expense, error) {
	clause, args := dateRange("date", start, end)
	return s.selectExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = ?`+clause+
		` ORDER BY date DESC, id DESC`, append([]interface{}{ownerID}, args...)...)
}

// FindAllExpenses returns every user's expenses dated within [start, end], newest first.
func (s *Store) FindAllExpenses(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	clause, args := dateRange("date", start, end)
	return s.selectExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE 1=1`+clause+
		` ORDER BY date DESC, id DESC`, args...)
}

// RecurringExpenses returns an owner's expenses flagged as recurring.
func (s *Store) RecurringExpenses(ctx context.Context, ownerID string) ([]models.Expense, error) {
	return s.selectExpenses(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND is_recurring = ?
		ORDER BY date DESC, id DESC`, ownerID, true)
}

// CountExpenses counts an owner's expenses, optionally restricted to a status.
func (s *Store) CountExpenses(ctx context.Context, ownerID, status string) (int, error) {
	if status == "" {
		return s.count(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = ?`, ownerID)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = ? AND status = ?`, ownerID, status)
}

// CountAllExpenses counts every user's expenses dated after since. A zero since counts all.
func (s *Store) CountAllExpenses(ctx context.Context, since time.Time) (int, error) {
	if since.IsZero() {
		return s.count(ctx, `SELECT COUNT(*) FROM expenses`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM expenses WHERE date > ?`, utc(since))
}

// ListAllExpensesWithUsers returns every expense, newest first, each with its owner.
// Rows whose owner is gone carry a nil user.
func (s *Store) ListAllExpensesWithUsers(ctx context.Context) ([]models.ExpenseWithUser, error) {
	expenses, err := s.FindAllExpenses(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		ids = append(ids, e.UserID)
	}
	refs, err := s.UserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ExpenseWithUser, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, models.ExpenseWithUser{Expense: e, User: refs[e.UserID]})
	}
	return out, nil
}

// DeleteExpensesByOwner removes every expense of ownerID.
func (s *Store) DeleteExpensesByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM expenses WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete expenses of %s: %w", ownerID, err)
	}
	return res.RowsAffected()
}
