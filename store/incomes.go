package store

import (
	"context"
	"fmt"
	"time"

	"farmfinance/backend/models"
)

const incomeColumns = `id, user_id, product, quantity, rate_per_unit, total_amount, is_manual_total, commission_amount,
	date, note, payment_method, buyer, is_regular_income, tags, invoice_number, season, status, created_at, updated_at`

var incomeSortColumns = map[string]string{
	"date":        "date",
	"product":     "product",
	"quantity":    "quantity",
	"ratePerUnit": "rate_per_unit",
	"totalAmount": "total_amount",
	"status":      "status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func scanIncome(row rowScanner) (models.Income, error) {
	var (
		i    models.Income
		tags string
	)
	err := row.Scan(&i.ID, &i.UserID, &i.Product, &i.Quantity, &i.RatePerUnit, &i.TotalAmount, &i.IsManualTotal,
		&i.CommissionAmount, &i.Date, &i.Note, &i.PaymentMethod, &i.Buyer, &i.IsRegularIncome, &tags,
		&i.InvoiceNumber, &i.Season, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	i.Tags = decodeTags(tags)
	return i, err
}

func (s *Store) selectIncomes(ctx context.Context, query string, args ...interface{}) ([]models.Income, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	incomes := []models.Income{}
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		incomes = append(incomes, i)
	}
	return incomes, rows.Err()
}

// CreateIncome inserts i as given. Derived fields must already be applied.
func (s *Store) CreateIncome(ctx context.Context, i *models.Income) error {
	if i.ID == "" {
		i.ID = newID()
	}
	now := s.timestamp()
	i.CreatedAt, i.UpdatedAt = now, now
	i.Date = utc(i.Date)

	tags, err := encodeJSON(i.Tags)
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	_, err = s.exec(ctx, `INSERT INTO incomes (`+incomeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.UserID, i.Product, i.Quantity, i.RatePerUnit, i.TotalAmount, i.IsManualTotal, i.CommissionAmount,
		i.Date, i.Note, i.PaymentMethod, i.Buyer, i.IsRegularIncome, tags, i.InvoiceNumber, i.Season, i.Status,
		i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	return nil
}

func (s *Store) UpdateIncome(ctx context.Context, i *models.Income) error {
	i.UpdatedAt = s.timestamp()
	i.Date = utc(i.Date)

	tags, err := encodeJSON(i.Tags)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	res, err := s.exec(ctx, `UPDATE incomes SET product = ?, quantity = ?, rate_per_unit = ?, total_amount = ?,
		is_manual_total = ?, commission_amount = ?, date = ?, note = ?, payment_method = ?, buyer = ?,
		is_regular_income = ?, tags = ?, invoice_number = ?, season = ?, status = ?, updated_at = ? WHERE id = ?`,
		i.Product, i.Quantity, i.RatePerUnit, i.TotalAmount, i.IsManualTotal, i.CommissionAmount, i.Date, i.Note,
		i.PaymentMethod, i.Buyer, i.IsRegularIncome, tags, i.InvoiceNumber, i.Season, i.Status, i.UpdatedAt, i.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return requireAffected(res, "update income")
}

func (s *Store) GetIncome(ctx context.Context, id string) (models.Income, error) {
	i, err := scanIncome(s.queryRow(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id))
	if err != nil {
		return i, notFound(err, "get income")
	}
	return i, nil
}

func (s *Store) DeleteIncome(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireAffected(res, "delete income")
}

// ListIncomes returns one page of an owner's incomes and the total match count.
func (s *Store) ListIncomes(ctx context.Context, ownerID string, f models.IncomeFilter) ([]models.Income, int, error) {
	f.Normalize()

	where := ` WHERE user_id = ?`
	args := []interface{}{ownerID}
	if f.Product != "" {
		where += ` AND product = ?`
		args = append(args, f.Product)
	}
	clause, rangeArgs := dateRange("date", f.StartDate, f.EndDate)
	where += clause
	args = append(args, rangeArgs...)

	total, err := s.count(ctx, `SELECT COUNT(*) FROM incomes`+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count incomes: %w", err)
	}

	query := `SELECT ` + incomeColumns + ` FROM incomes` + where +
		` ORDER BY ` + orderBy(f.ListQuery, incomeSortColumns, "date DESC, id DESC") + ` LIMIT ? OFFSET ?`
	incomes, err := s.selectIncomes(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return incomes, total, nil
}

// FindIncomesByOwnerAndDateRange returns an owner's incomes dated within
// [start, end], newest first. Zero bounds are open.
func (s *Store) FindIncomesByOwnerAndDateRange(ctx context.Context, ownerID string, start, end time.Time) ([]models.Income, error) {
	clause, args := dateRange("date", start, end)
	return s.selectIncomes(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE user_id = ?`+clause+
		` ORDER BY date DESC, id DESC`, append([]interface{}{ownerID}, args...)...)
}

// FindAllIncomes returns every user's incomes dated within [start, end], newest first.
func (s *Store) FindAllIncomes(ctx context.Context, start, end time.Time) ([]models.Income, error) {
	clause, args := dateRange("date", start, end)
	return s.selectIncomes(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE 1=1`+clause+
		` ORDER BY date DESC, id DESC`, args...)
}

func (s *Store) CountIncomes(ctx context.Context, ownerID, status string) (int, error) {
	if status == "" {
		return s.count(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id = ?`, ownerID)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id = ? AND status = ?`, ownerID, status)
}

// CountAllIncomes counts every user's incomes dated after since. A zero since counts all.
func (s *Store) CountAllIncomes(ctx context.Context, since time.Time) (int, error) {
	if since.IsZero() {
		return s.count(ctx, `SELECT COUNT(*) FROM incomes`)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM incomes WHERE date > ?`, utc(since))
}

func (s *Store) ListAllIncomesWithUsers(ctx context.Context) ([]models.IncomeWithUser, error) {
	incomes, err := s.FindAllIncomes(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(incomes))
	for _, i := range incomes {
		ids = append(ids, i.UserID)
	}
	refs, err := s.UserRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.IncomeWithUser, 0, len(incomes))
	for _, i := range incomes {
		out = append(out, models.IncomeWithUser{Income: i, User: refs[i.UserID]})
	}
	return out, nil
}

// DeleteIncomesByOwner removes every income of ownerID.
func (s *Store) DeleteIncomesByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM incomes WHERE user_id = ?`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete incomes of %s: %w", ownerID, err)
	}
	return res.RowsAffected()
}
