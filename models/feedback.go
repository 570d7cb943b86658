package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Feedback is a message a user sends to the administrators.
type Feedback struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user"`
	Message    string    `json:"message"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	Response   string    `json:"response,omitempty"`
	IsResolved bool      `json:"isResolved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type FeedbackWithUser struct {
	Feedback
	User *UserRef `json:"user"`
}

// SyncResolved mirrors Status into IsResolved. Call before every save.
func (f *Feedback) SyncResolved() {
	f.IsResolved = f.Status == FeedbackResolved
}

type FeedbackInput struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

func (in *FeedbackInput) Normalize() {
	in.Message = strings.TrimSpace(in.Message)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = FeedbackGeneral
	}
}

func (in FeedbackInput) Validate() error {
	v := NewValidationError()
	if in.Message == "" {
		v.Add("message", "Message is required")
	} else if utf8.RuneCountInString(in.Message) > 500 {
		v.Add("message", "Message cannot exceed 500 characters")
	}
	checkEnum(v, "category", &in.Category, FeedbackKinds)
	return v.Err()
}

// FeedbackStatusUpdate is the admin triage payload.
type FeedbackStatusUpdate struct {
	Status   string  `json:"status"`
	Response *string `json:"response"`
}

func (in FeedbackStatusUpdate) Validate() error {
	v := NewValidationError()
	if in.Status == "" {
		v.Add("status", "Status is required")
	} else {
		checkEnum(v, "status", &in.Status, FeedbackStatuses)
	}
	return v.Err()
}

func (in FeedbackStatusUpdate) ApplyTo(f *Feedback) {
	f.Status = in.Status
	if in.Response != nil {
		f.Response = strings.TrimSpace(*in.Response)
	}
	f.SyncResolved()
}

// FeedbackStats is the admin overview of the feedback queue.
type FeedbackStats struct {
	Total          int                `json:"total"`
	ByStatus       map[string]int     `json:"byStatus"`
	ByCategory     map[string]int     `json:"byCategory"`
	RecentFeedback []FeedbackWithUser `json:"recentFeedback"`
}
