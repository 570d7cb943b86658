package store

import (
	"context"
	"fmt"
)

// CascadeResult reports what DeleteUserCascade removed.
type CascadeResult struct {
	Expenses int64
	Incomes  int64
}

// DeleteUserCascade removes a user and then its transactions. The steps run
// one after another outside a transaction: a failure after the user row is
// gone leaves orphaned records, which CountOrphans reports.
func (s *Store) DeleteUserCascade(ctx context.Context, userID string) (CascadeResult, error) {
	var res CascadeResult
	if err := s.DeleteUser(ctx, userID); err != nil {
		return res, err
	}

	var err error
	if res.Expenses, err = s.DeleteExpensesByOwner(ctx, userID); err != nil {
		return res, fmt.Errorf("cascade user %s: %w", userID, err)
	}
	if res.Incomes, err = s.DeleteIncomesByOwner(ctx, userID); err != nil {
		return res, fmt.Errorf("cascade user %s: %w", userID, err)
	}
	return res, nil
}

// OrphanCounts is the number of transactions whose owner no longer exists.
type OrphanCounts struct {
	Expenses int
	Incomes  int
}

func (o OrphanCounts) Total() int {
	return o.Expenses + o.Incomes
}

func (s *Store) CountOrphans(ctx context.Context) (OrphanCounts, error) {
	var (
		o   OrphanCounts
		err error
	)
	const orphan = ` t WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = t.user_id)`
	if o.Expenses, err = s.count(ctx, `SELECT COUNT(*) FROM expenses`+orphan); err != nil {
		return o, fmt.Errorf("count orphan expenses: %w", err)
	}
	if o.Incomes, err = s.count(ctx, `SELECT COUNT(*) FROM incomes`+orphan); err != nil {
		return o, fmt.Errorf("count orphan incomes: %w", err)
	}
	return o, nil
}
