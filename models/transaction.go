package models

import (
	"strings"
	"time"
)

// Expense is money spent by a farmer. Amount is always positive.
type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date"`
	Note          string    `json:"note,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	IsRecurring   bool      `json:"isRecurring"`
	Tags          []string  `json:"tags"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Income is produce sold. TotalAmount is quantity*rate unless IsManualTotal.
type Income struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user"`
	Product          string    `json:"product"`
	Quantity         float64   `json:"quantity"`
	RatePerUnit      float64   `json:"ratePerUnit"`
	TotalAmount      float64   `json:"totalAmount"`
	IsManualTotal    bool      `json:"isManualTotal"`
	CommissionAmount float64   `json:"commissionAmount"`
	Date             time.Time `json:"date"`
	Note             string    `json:"note,omitempty"`
	PaymentMethod    string    `json:"paymentMethod"`
	Buyer            string    `json:"buyer,omitempty"`
	IsRegularIncome  bool      `json:"isRegularIncome"`
	Tags             []string  `json:"tags"`
	InvoiceNumber    string    `json:"invoiceNumber,omitempty"`
	Season           string    `json:"season"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UserRef is the short owner projection attached to admin listings.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExpenseWithUser shadows the embedded owner id with the owner projection.
type ExpenseWithUser struct {
	Expense
	User *UserRef `json:"user"`
}

type IncomeWithUser struct {
	Income
	User *UserRef `json:"user"`
}

// NormalizeTags trims, lowercases and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ApplyExpenseDefaults fills enum defaults and normalizes tags before persistence.
func ApplyExpenseDefaults(e *Expense) {
	if e.PaymentMethod == "" {
		e.PaymentMethod = PaymentCash
	}
	if e.Status == "" {
		e.Status = ExpenseCompleted
	}
	e.Tags = NormalizeTags(e.Tags)
}

// ApplyIncomeDefaults fills enum defaults and normalizes tags before persistence.
func ApplyIncomeDefaults(i *Income) {
	if i.PaymentMethod == "" {
		i.PaymentMethod = PaymentCash
	}
	if i.Status == "" {
		i.Status = IncomeReceived
	}
	if i.Season == "" {
		i.Season = SeasonOther
	}
	i.Tags = NormalizeTags(i.Tags)
}
