package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"farmfinance/backend/database"
	"farmfinance/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reverseCipher is enough to prove values are transformed on the way in and out.
type reverseCipher struct{}

func (reverseCipher) Encrypt(s string) (string, error) { return "enc:" + reverse(s), nil }
func (reverseCipher) Decrypt(s string) (string, error) {
	return reverse(strings.TrimPrefix(s, "enc:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, database.DriverSQLite))
	return New(db, database.DriverSQLite, opts...)
}

func createUser(t *testing.T, s *Store, username string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
		AuthProvider: models.AuthProviderLocal,
		Preferences:  models.DefaultPreferences(),
		FarmDetails:  models.DefaultFarmDetails(),
	}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createExpense(t *testing.T, s *Store, owner string, amount float64, category string, date time.Time, tags ...string) models.Expense {
	t.Helper()
	e := models.Expense{UserID: owner, Amount: amount, Category: category, Date: date, Tags: tags}
	models.ApplyExpenseDefaults(&e)
	require.NoError(t, s.CreateExpense(context.Background(), &e))
	return e
}

func createIncome(t *testing.T, s *Store, owner, product string, qty, rate float64, date time.Time) models.Income {
	t.Helper()
	i := models.Income{UserID: owner, Product: product, Quantity: qty, RatePerUnit: rate, Date: date}
	models.ApplyIncomeDefaults(&i)
	models.ApplyIncomeDerivedFields(&i, nil, false)
	require.NoError(t, s.CreateIncome(context.Background(), &i))
	return i
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithCipher(reverseCipher{}))

	u := createUser(t, s, "ramesh")
	u.PhoneNumber = "+911234"
	u.Location = models.Location{Village: "Anand", State: "Gujarat"}
	u.FarmDetails.PrimaryCrops = []string{"cotton", "wheat"}
	require.NoError(t, s.UpdateUser(ctx, &u))

	var stored string
	require.NoError(t, s.DB().QueryRow(`SELECT phone_number FROM users WHERE id = ?`, u.ID).Scan(&stored))
	assert.Equal(t, "enc:432119+", stored)

	got, err := s.GetUserByEmail(ctx, "  RAMESH@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "+911234", got.PhoneNumber)
	assert.Equal(t, "Anand", got.Location.Village)
	assert.Equal(t, []string{"cotton", "wheat"}, got.FarmDetails.PrimaryCrops)
	assert.Equal(t, "INR", got.Preferences.Currency)
	assert.Nil(t, got.LastLogin)

	login := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchLastLogin(ctx, u.ID, login))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, login.Equal(*got.LastLogin))
}

func TestCreateUserConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	createUser(t, s, "asha")

	dup := models.User{Username: "asha", Email: "other@example.com", Role: models.RoleUser}
	err := s.CreateUser(ctx, &dup)
	assert.ErrorIs(t, err, models.ErrConflict)

	exists, err := s.UserExists(ctx, "ASHA@example.com", "nobody")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(context.Background(), "missing"), models.ErrNotFound)
}

func TestCountUsersSince(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	clock := now.AddDate(0, 0, -10)
	s := newTestStore(t, WithClock(func() time.Time { return clock }))

	createUser(t, s, "old_user")
	clock = now.AddDate(0, 0, -1)
	fresh := createUser(t, s, "new_user")

	total, err := s.CountUsers(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	recent, err := s.CountUsers(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 1, recent)

	users, err := s.RecentUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, fresh.ID, users[0].ID)
}

func TestListExpensesFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")
	other := createUser(t, s, "neighbour")

	createExpense(t, s, owner.ID, 100, "Seeds", day(2024, 1, 5), "Kharif", "organic")
	createExpense(t, s, owner.ID, 250, "Fertilizer", day(2024, 2, 10), "urea")
	createExpense(t, s, owner.ID, 75, "Seeds", day(2024, 3, 15), "100%_pure")
	createExpense(t, s, other.ID, 999, "Seeds", day(2024, 2, 1))

	tests := []struct {
		name   string
		filter models.ExpenseFilter
		want   []float64
		total  int
	}{
		{"all, newest first", models.ExpenseFilter{}, []float64{75, 250, 100}, 3},
		{"category", models.ExpenseFilter{Category: "Seeds"}, []float64{75, 100}, 2},
		{"date range inclusive", models.ExpenseFilter{StartDate: day(2024, 2, 10), EndDate: day(2024, 3, 15)}, []float64{75, 250}, 2},
		{"any tag", models.ExpenseFilter{Tags: []string{" ORGANIC ", "urea"}}, []float64{250, 100}, 2},
		{"like wildcards are escaped", models.ExpenseFilter{Tags: []string{"_00%_pure"}}, nil, 0},
		{"sort ascending by amount", models.ExpenseFilter{ListQuery: models.ListQuery{Sort: "amount"}}, []float64{75, 100, 250}, 3},
		{"unknown sort falls back", models.ExpenseFilter{ListQuery: models.ListQuery{Sort: "-password"}}, []float64{75, 250, 100}, 3},
		{"second page", models.ExpenseFilter{ListQuery: models.ListQuery{Page: 2, Limit: 2}}, []float64{100}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := s.ListExpenses(ctx, owner.ID, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			var amounts []float64
			for _, e := range list {
				amounts = append(amounts, e.Amount)
			}
			assert.Equal(t, tt.want, amounts)
		})
	}
}

func TestListExpensesRecurringFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")

	e := createExpense(t, s, owner.ID, 40, "Electricity", day(2024, 4, 1))
	e.IsRecurring = true
	require.NoError(t, s.UpdateExpense(ctx, &e))
	createExpense(t, s, owner.ID, 60, "Labour", day(2024, 4, 2))

	yes := true
	list, total, err := s.ListExpenses(ctx, owner.ID, models.ExpenseFilter{IsRecurring: &yes})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Electricity", list[0].Category)

	recurring, err := s.RecurringExpenses(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, recurring, 1)
}

func TestExpenseTagsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")

	e := createExpense(t, s, owner.ID, 10, "Tools", day(2024, 1, 1), "Hand", "hand", " tools ")
	got, err := s.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hand", "tools"}, got.Tags)
	assert.Equal(t, models.PaymentCash, got.PaymentMethod)
	assert.Equal(t, models.ExpenseCompleted, got.Status)
}

func TestIncomeQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")

	createIncome(t, s, owner.ID, "Wheat", 10, 50, day(2024, 3, 5))
	createIncome(t, s, owner.ID, "Cotton", 5, 80, day(2024, 3, 20))
	createIncome(t, s, owner.ID, "Wheat", 2, 10, day(2023, 12, 31))

	list, total, err := s.ListIncomes(ctx, owner.ID, models.IncomeFilter{Product: "Wheat"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 500.0, list[0].TotalAmount)

	inMarch, err := s.FindIncomesByOwnerAndDateRange(ctx, owner.ID, day(2024, 3, 1), day(2024, 3, 31))
	require.NoError(t, err)
	require.Len(t, inMarch, 2)
	assert.Equal(t, "Cotton", inMarch[0].Product)

	all, err := s.FindAllIncomes(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := s.CountIncomes(ctx, owner.ID, models.IncomePending)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListAllWithUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")
	createExpense(t, s, owner.ID, 10, "Tools", day(2024, 1, 1))
	createExpense(t, s, "ghost", 20, "Tools", day(2024, 1, 2))

	rows, err := s.ListAllExpensesWithUsers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].User)
	require.NotNil(t, rows[1].User)
	assert.Equal(t, "farmer", rows[1].User.Username)

	b, err := json.Marshal(rows[1])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"user":{"id":"`+owner.ID+`"`)
}

func TestDeleteUserCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")
	keep := createUser(t, s, "keeper")

	createExpense(t, s, owner.ID, 10, "Tools", day(2024, 1, 1))
	createExpense(t, s, owner.ID, 20, "Seeds", day(2024, 1, 2))
	createIncome(t, s, owner.ID, "Milk", 1, 30, day(2024, 1, 3))
	createExpense(t, s, keep.ID, 5, "Tools", day(2024, 1, 1))

	res, err := s.DeleteUserCascade(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{Expenses: 2, Incomes: 1}, res)

	n, err := s.CountAllExpenses(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.DeleteUserCascade(ctx, owner.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCountOrphans(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	owner := createUser(t, s, "farmer")
	createExpense(t, s, owner.ID, 10, "Tools", day(2024, 1, 1))
	createIncome(t, s, owner.ID, "Milk", 1, 30, day(2024, 1, 3))

	// the user row goes, the transactions stay
	require.NoError(t, s.DeleteUser(ctx, owner.ID))

	o, err := s.CountOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, OrphanCounts{Expenses: 1, Incomes: 1}, o)
	assert.Equal(t, 2, o.Total())
}

func TestFeedbackLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := createUser(t, s, "farmer")

	first := models.Feedback{UserID: u.ID, Message: "Export is slow", Category: models.FeedbackBugReport}
	require.NoError(t, s.CreateFeedback(ctx, &first))
	assert.Equal(t, models.FeedbackNew, first.Status)
	assert.False(t, first.IsResolved)

	second := models.Feedback{UserID: u.ID, Message: "Add Gujarati", Category: models.FeedbackFeatureRequest}
	require.NoError(t, s.CreateFeedback(ctx, &second))

	first.Status = models.FeedbackResolved
	first.Response = "Fixed"
	require.NoError(t, s.UpdateFeedback(ctx, &first))

	got, err := s.GetFeedback(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	assert.Equal(t, "Fixed", got.Response)
	require.NotNil(t, got.User)
	assert.Equal(t, "farmer", got.User.Username)

	stats, err := s.FeedbackStats(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, map[string]int{models.FeedbackNew: 1, models.FeedbackResolved: 1}, stats.ByStatus)
	assert.Equal(t, 1, stats.ByCategory[models.FeedbackBugReport])
	assert.Len(t, stats.RecentFeedback, 2)

	own, err := s.ListFeedbackByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	require.NoError(t, s.DeleteFeedback(ctx, second.ID))
	assert.ErrorIs(t, s.DeleteFeedback(ctx, second.ID), models.ErrNotFound)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, st := range models.DefaultSettings() {
		st := st
		created, err := s.InsertSettingIfMissing(ctx, &st)
		require.NoError(t, err)
		assert.True(t, created, st.Key)
	}

	again := models.Setting{Key: "siteTitle", Value: json.RawMessage(`"Other"`)}
	created, err := s.InsertSettingIfMissing(ctx, &again)
	require.NoError(t, err)
	assert.False(t, created)

	title, err := s.GetSetting(ctx, "siteTitle")
	require.NoError(t, err)
	assert.JSONEq(t, `"Farm Finance"`, string(title.Value))

	title.Value = json.RawMessage(`"Krishi Ledger"`)
	title.LastUpdatedBy = "admin-id"
	require.NoError(t, s.UpsertSetting(ctx, &title))

	got, err := s.GetSetting(ctx, "siteTitle")
	require.NoError(t, err)
	assert.JSONEq(t, `"Krishi Ledger"`, string(got.Value))
	assert.Equal(t, title.ID, got.ID)

	public, err := s.ListPublicSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 4)

	all, err := s.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	_, err = s.GetSetting(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
