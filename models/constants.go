package models

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Auth providers
const (
	AuthProviderLocal    = "local"
	AuthProviderFirebase = "firebase"
)

// Payment methods shared by expenses and incomes
const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
	PaymentBank   = "bank"
	PaymentOther  = "other"
)

// Expense statuses
const (
	ExpensePending   = "pending"
	ExpenseCompleted = "completed"
	ExpenseCancelled = "cancelled"
)

// Income statuses
const (
	IncomePending   = "pending"
	IncomeReceived  = "received"
	IncomeCancelled = "cancelled"
)

// Seasons an income can be attributed to
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"
	SeasonOther  = "other"
)

// Feedback categories and statuses
const (
	FeedbackBugReport      = "Bug Report"
	FeedbackFeatureRequest = "Feature Request"
	FeedbackGeneral        = "General Feedback"
	FeedbackSupport        = "Support"

	FeedbackNew      = "New"
	FeedbackInReview = "In Review"
	FeedbackResolved = "Resolved"
)

// Setting categories
const (
	SettingSystem       = "system"
	SettingAppearance   = "appearance"
	SettingFinance      = "finance"
	SettingNotification = "notification"
	SettingUser         = "user"
)

// Transaction kinds as reported in mixed activity lists
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// MaxNoteLength bounds free-text notes on transactions.
const MaxNoteLength = 500

var (
	PaymentMethods   = []string{PaymentCash, PaymentCredit, PaymentBank, PaymentOther}
	ExpenseStatuses  = []string{ExpensePending, ExpenseCompleted, ExpenseCancelled}
	IncomeStatuses   = []string{IncomePending, IncomeReceived, IncomeCancelled}
	Seasons          = []string{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonOther}
	Roles            = []string{RoleUser, RoleAdmin}
	FeedbackKinds    = []string{FeedbackBugReport, FeedbackFeatureRequest, FeedbackGeneral, FeedbackSupport}
	FeedbackStatuses = []string{FeedbackNew, FeedbackInReview, FeedbackResolved}
	SettingGroups    = []string{SettingSystem, SettingAppearance, SettingFinance, SettingNotification, SettingUser}
)

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
