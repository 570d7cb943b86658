package services

import (
	"context"
	"errors"
	"time"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/reports"
	"farmfinance/backend/store"

	"golang.org/x/sync/errgroup"
)

const (
	recentUsersLimit = 5
	statsWindow      = 7 * 24 * time.Hour

	msgProfileTaken = "Username or email is already in use"
	msgSelfDelete   = "You cannot delete your own admin account"
	msgUserNotFound = "User not found"
)

// UserFinances is the admin view of one user's records.
type UserFinances struct {
	Expenses []models.Expense `json:"expenses"`
	Income   []models.Income  `json:"income"`
}

type UserDetail struct {
	User     models.SafeUser
	Finances UserFinances
}

type UserService struct {
	store *store.Store
	now   func() time.Time
}

func NewUserService(s *store.Store) *UserService {
	return &UserService{store: s, now: time.Now}
}

func (u *UserService) Profile(ctx context.Context, caller models.Identity) (models.SafeUser, error) {
	user, err := u.store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return models.SafeUser{}, userLookup(err)
	}
	return models.NewSafeUser(user), nil
}

// UpdateProfile merges a partial profile patch into the caller's account.
func (u *UserService) UpdateProfile(ctx context.Context, caller models.Identity, patch models.ProfileUpdate) (models.SafeUser, error) {
	if err := patch.Validate(); err != nil {
		return models.SafeUser{}, err
	}
	user, err := u.store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return models.SafeUser{}, userLookup(err)
	}

	patch.ApplyTo(&user)
	if err := u.save(ctx, &user); err != nil {
		return models.SafeUser{}, err
	}
	return models.NewSafeUser(user), nil
}

// List returns every account, newest first.
func (u *UserService) List(ctx context.Context) ([]models.SafeUser, error) {
	users, err := u.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.SafeUser, 0, len(users))
	for _, user := range users {
		out = append(out, models.NewSafeUser(user))
	}
	return out, nil
}

// Detail loads a user together with all of their expenses and incomes.
func (u *UserService) Detail(ctx context.Context, id string) (UserDetail, error) {
	user, err := u.store.GetUserByID(ctx, id)
	if err != nil {
		return UserDetail{}, userLookup(err)
	}

	var fin UserFinances
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fin.Expenses, err = u.store.FindExpensesByOwnerAndDateRange(gctx, id, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		fin.Income, err = u.store.FindIncomesByOwnerAndDateRange(gctx, id, time.Time{}, time.Time{})
		return err
	})
	if err := g.Wait(); err != nil {
		return UserDetail{}, err
	}
	return UserDetail{User: models.NewSafeUser(user), Finances: fin}, nil
}

// AdminUpdate applies an admin patch. Passwords cannot be changed this way.
func (u *UserService) AdminUpdate(ctx context.Context, admin models.Identity, id string, patch models.AdminUserUpdate) (models.SafeUser, error) {
	if err := patch.Validate(); err != nil {
		return models.SafeUser{}, err
	}
	user, err := u.store.GetUserByID(ctx, id)
	if err != nil {
		return models.SafeUser{}, userLookup(err)
	}

	patch.ApplyTo(&user)
	if err := u.save(ctx, &user); err != nil {
		return models.SafeUser{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().Stringer("admin", admin).Str("user_id", id).Msg("User updated by admin")
	return models.NewSafeUser(user), nil
}

// Delete removes a user and their records. Admins cannot delete themselves.
func (u *UserService) Delete(ctx context.Context, admin models.Identity, id string) (store.CascadeResult, error) {
	if admin.UserID == id {
		return store.CascadeResult{}, models.NewError(models.ErrBadRequest, msgSelfDelete)
	}

	res, err := u.store.DeleteUserCascade(ctx, id)
	log := logger.FromContext(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) && res == (store.CascadeResult{}) {
			return res, userLookup(err)
		}
		log.Error().Err(err).Str("user_id", id).Msg("User cascade delete incomplete")
		return res, err
	}

	log.Info().
		Stringer("admin", admin).
		Str("user_id", id).
		Int64("expenses", res.Expenses).
		Int64("incomes", res.Incomes).
		Msg("User deleted")
	return res, nil
}

// SystemStats builds the admin overview of accounts and money.
func (u *UserService) SystemStats(ctx context.Context) (models.SystemStats, error) {
	var (
		stats    models.SystemStats
		recent   []models.User
		incomes  []models.Income
		expenses []models.Expense
	)
	since := u.now().Add(-statsWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Users.Total, err = u.store.CountUsers(gctx, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Users.NewThisWeek, err = u.store.CountUsers(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = u.store.RecentUsers(gctx, recentUsersLimit)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = u.store.FindAllIncomes(gctx, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = u.store.FindAllExpenses(gctx, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() error {
		var err error
		stats.Finances.ExpensesThisWeek, err = u.store.CountAllExpenses(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Finances.IncomeThisWeek, err = u.store.CountAllIncomes(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.SystemStats{}, err
	}

	stats.Users.RecentUsers = make([]models.RecentUser, 0, len(recent))
	for _, r := range recent {
		stats.Users.RecentUsers = append(stats.Users.RecentUsers, models.RecentUser{
			ID:        r.ID,
			Username:  r.Username,
			Email:     r.Email,
			CreatedAt: r.CreatedAt,
		})
	}

	totals := reports.Totals(incomes, expenses)
	stats.Finances.TotalIncome = totals.TotalIncome
	stats.Finances.TotalExpenses = totals.TotalExpense
	stats.Finances.NetBalance = totals.NetAmount
	stats.Finances.IncomeCount = len(incomes)
	stats.Finances.ExpensesCount = len(expenses)
	return stats, nil
}

func (u *UserService) save(ctx context.Context, user *models.User) error {
	err := u.store.UpdateUser(ctx, user)
	switch {
	case errors.Is(err, models.ErrConflict):
		return models.NewError(models.ErrConflict, msgProfileTaken)
	case err != nil:
		return userLookup(err)
	}
	return nil
}

func userLookup(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return models.NewError(models.ErrNotFound, msgUserNotFound)
	}
	return err
}
