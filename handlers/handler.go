package handlers

import (
	"time"

	"farmfinance/backend/reports"
	"farmfinance/backend/services"
	"farmfinance/backend/store"
)

// Handler serves every HTTP endpoint on top of the services.
type Handler struct {
	store       *store.Store
	auth        *services.AuthService
	ledger      *services.LedgerService
	users       *services.UserService
	feedback    *services.FeedbackService
	settings    *services.SettingsService
	reporter    *reports.Reporter
	development bool
	now         func() time.Time
}

type Deps struct {
	Store       *store.Store
	Auth        *services.AuthService
	Ledger      *services.LedgerService
	Users       *services.UserService
	Feedback    *services.FeedbackService
	Settings    *services.SettingsService
	Reporter    *reports.Reporter
	Development bool
}

func New(d Deps) *Handler {
	return &Handler{
		store:       d.Store,
		auth:        d.Auth,
		ledger:      d.Ledger,
		users:       d.Users,
		feedback:    d.Feedback,
		settings:    d.Settings,
		reporter:    d.Reporter,
		development: d.Development,
		now:         time.Now,
	}
}
