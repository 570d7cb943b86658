package models

import "time"

// CategoryTotal is one row of the per-category expense rollup.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// ProductTotal is one row of the per-product income rollup.
type ProductTotal struct {
	Product  string  `json:"product"`
	Total    float64 `json:"total"`
	Quantity float64 `json:"quantity"`
	Count    int     `json:"count"`
}

// MonthlyTotal is one point of the 12-month dashboard chart.
type MonthlyTotal struct {
	Month     int     `json:"month"`
	MonthName string  `json:"monthName"`
	Income    float64 `json:"income"`
	Expenses  float64 `json:"expenses"`
	Profit    float64 `json:"profit"`
}

// MonthlyBreakdown is the admin variant of MonthlyTotal, with record counts.
type MonthlyBreakdown struct {
	Month         int     `json:"month"`
	MonthName     string  `json:"monthName"`
	Income        float64 `json:"income"`
	IncomeCount   int     `json:"incomeCount"`
	Expenses      float64 `json:"expenses"`
	ExpensesCount int     `json:"expensesCount"`
	Profit        float64 `json:"profit"`
}

// TransactionSample is a transaction as listed under a MonthlyAggregate.
type TransactionSample struct {
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Note     *string   `json:"note"`
}

// Sample types as shown on the monthly detail page.
const (
	SampleIncome  = "Income"
	SampleExpense = "Expense"
)

// MonthlyAggregate summarises one calendar month of a user's records.
type MonthlyAggregate struct {
	Month         string              `json:"month"` // YYYY-MM
	MonthName     string              `json:"monthName"`
	Year          int                 `json:"year"`
	TotalIncome   float64             `json:"totalIncome"`
	TotalExpenses float64             `json:"totalExpenses"`
	NetProfit     float64             `json:"netProfit"`
	Transactions  []TransactionSample `json:"transactions"`
}

type DashboardSummary struct {
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
	Profit       float64 `json:"profit"`
}

type PeriodTotals struct {
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
	NetAmount    float64 `json:"netAmount"`
}

// Activity is one entry of a mixed income/expense feed.
type Activity struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
}

type FinancialSummary struct {
	PeriodTotals
	LastMonth      PeriodTotals `json:"lastMonth"`
	RecentActivity []Activity   `json:"recentActivity"`
}

type TransactionLists struct {
	Expenses []Expense `json:"expenses"`
	Income   []Income  `json:"income"`
}

type RecordCounts struct {
	Expenses int `json:"expenses"`
	Income   int `json:"income"`
}

type DashboardStats struct {
	ExpenseCategories []CategoryTotal  `json:"expenseCategories"`
	ProductRevenue    []ProductTotal   `json:"productRevenue"`
	Today             TransactionLists `json:"today"`
	Recent            TransactionLists `json:"recent"`
	Totals            RecordCounts     `json:"totals"`
	Pending           RecordCounts     `json:"pending"`
}

type CountTotal struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type ExpenseStats struct {
	CategorySummary   []CategoryTotal `json:"categorySummary"`
	TodayExpenses     CountTotal      `json:"todayExpenses"`
	MonthlyExpenses   CountTotal      `json:"monthlyExpenses"`
	RecurringExpenses CountTotal      `json:"recurringExpenses"`
}

type RecentUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserStats struct {
	Total       int          `json:"total"`
	NewThisWeek int          `json:"newThisWeek"`
	RecentUsers []RecentUser `json:"recentUsers"`
}

type FinanceStats struct {
	TotalExpenses    float64 `json:"totalExpenses"`
	TotalIncome      float64 `json:"totalIncome"`
	NetBalance       float64 `json:"netBalance"`
	ExpensesCount    int     `json:"expensesCount"`
	IncomeCount      int     `json:"incomeCount"`
	ExpensesThisWeek int     `json:"expensesThisWeek"`
	IncomeThisWeek   int     `json:"incomeThisWeek"`
}

type SystemStats struct {
	Users    UserStats    `json:"users"`
	Finances FinanceStats `json:"finances"`
}
