package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ExpenseInput is the write payload for expenses. Nil fields were not sent.
type ExpenseInput struct {
	Amount        *float64 `json:"amount"`
	Category      *string  `json:"category"`
	Date          *string  `json:"date"`
	Note          *string  `json:"note"`
	PaymentMethod *string  `json:"paymentMethod"`
	IsRecurring   *bool    `json:"isRecurring"`
	Tags          []string `json:"tags"`
	Status        *string  `json:"status"`
}

// IncomeInput is the write payload for incomes. Nil fields were not sent.
type IncomeInput struct {
	Product         *string  `json:"product"`
	Quantity        *float64 `json:"quantity"`
	RatePerUnit     *float64 `json:"ratePerUnit"`
	TotalAmount     *float64 `json:"totalAmount"`
	IsManualTotal   *bool    `json:"isManualTotal"`
	Date            *string  `json:"date"`
	Note            *string  `json:"note"`
	PaymentMethod   *string  `json:"paymentMethod"`
	Buyer           *string  `json:"buyer"`
	IsRegularIncome *bool    `json:"isRegularIncome"`
	Tags            []string `json:"tags"`
	InvoiceNumber   *string  `json:"invoiceNumber"`
	Season          *string  `json:"season"`
	Status          *string  `json:"status"`
}

var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}
	localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02"}
)

// ParseDate is ParseDateIn with UTC.
func ParseDate(value string) (time.Time, error) {
	return ParseDateIn(value, time.UTC)
}

// ParseDateIn accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Values without an offset are read as wall time in loc, so a bare date is
// midnight in loc rather than midnight UTC.
func ParseDateIn(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func checkLength(v *ValidationError, field, value string, min, max int, label string) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		v.Add(field, fmt.Sprintf("%s must be at least %d characters long", label, min))
	} else if max > 0 && n > max {
		v.Add(field, fmt.Sprintf("%s cannot exceed %d characters", label, max))
	}
}

func checkNote(v *ValidationError, note *string) {
	if note != nil && utf8.RuneCountInString(*note) > MaxNoteLength {
		v.Add("note", fmt.Sprintf("Note cannot exceed %d characters", MaxNoteLength))
	}
}

func checkEnum(v *ValidationError, field string, value *string, allowed []string) {
	if value != nil && !oneOf(*value, allowed) {
		v.Add(field, fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
	}
}

func checkDate(v *ValidationError, value *string) {
	if value == nil {
		return
	}
	if _, err := ParseDate(*value); err != nil {
		v.Add("date", "Invalid date format")
	}
}

// Validate checks the payload. partial is true for updates, where every field is optional.
func (in ExpenseInput) Validate(partial bool) error {
	v := NewValidationError()

	if in.Amount == nil {
		if !partial {
			v.Add("amount", "Amount is required")
		}
	} else if *in.Amount <= 0 {
		v.Add("amount", "Amount must be a positive number")
	}

	if in.Category == nil {
		if !partial {
			v.Add("category", "Category is required")
		}
	} else {
		checkLength(v, "category", *in.Category, 2, 50, "Category")
	}

	if in.Date == nil && !partial {
		v.Add("date", "Date is required")
	}
	checkDate(v, in.Date)
	checkNote(v, in.Note)
	checkEnum(v, "paymentMethod", in.PaymentMethod, PaymentMethods)
	checkEnum(v, "status", in.Status, ExpenseStatuses)

	return v.Err()
}

// ApplyTo copies the supplied fields onto e. Dates without an offset are
// read in loc. Validate must have passed.
func (in ExpenseInput) ApplyTo(e *Expense, loc *time.Location) {
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if in.Date != nil {
		e.Date, _ = ParseDateIn(*in.Date, loc)
	}
	if in.Note != nil {
		e.Note = strings.TrimSpace(*in.Note)
	}
	if in.PaymentMethod != nil {
		e.PaymentMethod = *in.PaymentMethod
	}
	if in.IsRecurring != nil {
		e.IsRecurring = *in.IsRecurring
	}
	if in.Tags != nil {
		e.Tags = in.Tags
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
}

// Validate checks the payload. partial is true for updates.
func (in IncomeInput) Validate(partial bool) error {
	v := NewValidationError()

	if in.Product == nil {
		if !partial {
			v.Add("product", "Product name is required")
		}
	} else {
		checkLength(v, "product", *in.Product, 2, 50, "Product name")
	}

	nonNegative := func(field, label string, value *float64) {
		if value == nil {
			if !partial && field != "totalAmount" {
				v.Add(field, label+" is required")
			}
			return
		}
		if *value < 0 {
			v.Add(field, label+" cannot be negative")
		}
	}
	nonNegative("quantity", "Quantity", in.Quantity)
	nonNegative("ratePerUnit", "Rate per unit", in.RatePerUnit)
	nonNegative("totalAmount", "Total amount", in.TotalAmount)

	if in.Date == nil && !partial {
		v.Add("date", "Date is required")
	}
	checkDate(v, in.Date)
	checkNote(v, in.Note)
	if in.Buyer != nil && utf8.RuneCountInString(*in.Buyer) > 100 {
		v.Add("buyer", "Buyer name cannot exceed 100 characters")
	}
	checkEnum(v, "paymentMethod", in.PaymentMethod, PaymentMethods)
	checkEnum(v, "season", in.Season, Seasons)
	checkEnum(v, "status", in.Status, IncomeStatuses)

	return v.Err()
}

// ApplyTo copies the supplied fields onto i, reading offset-less dates in
// loc. Derived totals are left to ApplyIncomeDerivedFields.
func (in IncomeInput) ApplyTo(i *Income, loc *time.Location) {
	if in.Product != nil {
		i.Product = strings.TrimSpace(*in.Product)
	}
	if in.Quantity != nil {
		i.Quantity = *in.Quantity
	}
	if in.RatePerUnit != nil {
		i.RatePerUnit = *in.RatePerUnit
	}
	if in.TotalAmount != nil {
		i.TotalAmount = *in.TotalAmount
	}
	if in.IsManualTotal != nil {
		i.IsManualTotal = *in.IsManualTotal
	}
	if in.Date != nil {
		i.Date, _ = ParseDateIn(*in.Date, loc)
	}
	if in.Note != nil {
		i.Note = strings.TrimSpace(*in.Note)
	}
	if in.PaymentMethod != nil {
		i.PaymentMethod = *in.PaymentMethod
	}
	if in.Buyer != nil {
		i.Buyer = strings.TrimSpace(*in.Buyer)
	}
	if in.IsRegularIncome != nil {
		i.IsRegularIncome = *in.IsRegularIncome
	}
	if in.Tags != nil {
		i.Tags = in.Tags
	}
	if in.InvoiceNumber != nil {
		i.InvoiceNumber = strings.TrimSpace(*in.InvoiceNumber)
	}
	if in.Season != nil {
		i.Season = *in.Season
	}
	if in.Status != nil {
		i.Status = *in.Status
	}
}
