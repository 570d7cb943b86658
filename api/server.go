package api

import (
	"net/http"

	"farmfinance/backend/handlers"
	"farmfinance/backend/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server owns the router and the middleware chain around it.
type Server struct {
	router  *mux.Router
	handler *handlers.Handler
	auth    *middleware.Authenticator
	log     zerolog.Logger
	origins []string
	dev     bool
}

type Options struct {
	Handler        *handlers.Handler
	Authenticator  *middleware.Authenticator
	Logger         zerolog.Logger
	AllowedOrigins []string
	Development    bool
}

// NewServer creates the API server and registers every route.
func NewServer(opts Options) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		handler: opts.Handler,
		auth:    opts.Authenticator,
		log:     opts.Logger,
		origins: opts.AllowedOrigins,
		dev:     opts.Development,
	}
	s.router.NotFoundHandler = http.HandlerFunc(notFound)

	// Routes answer both with and without the /api prefix.
	s.RegisterRoutes(s.router.PathPrefix("/api").Subrouter())
	s.RegisterRoutes(s.router)
	return s
}

// RegisterRoutes registers all API routes on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	h := s.handler

	// Public routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/auth/register", h.Register).Methods("POST")
	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/settings/public", h.PublicSettings).Methods("GET")

	protected := r.PathPrefix("").Subrouter()
	protected.Use(s.auth.Middleware)

	protected.HandleFunc("/auth/me", h.Me).Methods("GET")
	protected.HandleFunc("/auth/profile", h.UpdateAuthProfile).Methods("PUT")

	protected.HandleFunc("/user/profile", h.GetProfile).Methods("GET")
	protected.HandleFunc("/user/profile", h.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/monthly-financial/{userId}", h.MonthlyFinancial).Methods("GET")

	// Fixed paths come before /expenses/{id} so they are not read as ids.
	protected.HandleFunc("/expenses", h.ListExpenses).Methods("GET")
	protected.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	protected.HandleFunc("/expenses/stats", h.ExpenseStats).Methods("GET")
	protected.HandleFunc("/expenses/date-range", h.ExpensesByDateRange).Methods("GET")
	protected.HandleFunc("/expenses/{id}", h.GetExpense).Methods("GET")
	protected.HandleFunc("/expenses/{id}", h.UpdateExpense).Methods("PUT")
	protected.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods("DELETE")
	protected.HandleFunc("/expenses/{id}/status", h.UpdateExpenseStatus).Methods("PATCH")

	protected.HandleFunc("/income", h.ListIncomes).Methods("GET")
	protected.HandleFunc("/income", h.CreateIncome).Methods("POST")
	protected.HandleFunc("/income/{id}", h.GetIncome).Methods("GET")
	protected.HandleFunc("/income/{id}", h.UpdateIncome).Methods("PUT")
	protected.HandleFunc("/income/{id}", h.DeleteIncome).Methods("DELETE")

	protected.HandleFunc("/dashboard/summary", h.DashboardSummary).Methods("GET")
	protected.HandleFunc("/dashboard/monthly", h.DashboardMonthly).Methods("GET")
	protected.HandleFunc("/dashboard/financial-summary", h.FinancialSummary).Methods("GET")
	protected.HandleFunc("/dashboard/stats", h.DashboardStats).Methods("GET")
	protected.HandleFunc("/dashboard/export", h.ExportDashboard).Methods("GET")

	protected.HandleFunc("/feedback", h.SubmitFeedback).Methods("POST")
	protected.HandleFunc("/feedback", h.MyFeedback).Methods("GET")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin())

	admin.HandleFunc("/stats", h.AdminStats).Methods("GET")
	admin.HandleFunc("/stats/monthly", h.AdminMonthly).Methods("GET")

	admin.HandleFunc("/users", h.AdminListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", h.AdminGetUser).Methods("GET")
	admin.HandleFunc("/users/{id}", h.AdminUpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", h.AdminDeleteUser).Methods("DELETE")

	admin.HandleFunc("/expenses", h.AdminListExpenses).Methods("GET")
	admin.HandleFunc("/expenses/{id}", h.AdminDeleteExpense).Methods("DELETE")
	admin.HandleFunc("/income", h.AdminListIncome).Methods("GET")
	admin.HandleFunc("/income/{id}", h.AdminDeleteIncome).Methods("DELETE")

	admin.HandleFunc("/settings", h.AdminSettings).Methods("GET")
	admin.HandleFunc("/settings", h.AdminUpdateSettings).Methods("PUT")

	admin.HandleFunc("/feedback", h.AllFeedback).Methods("GET")
	admin.HandleFunc("/feedback/stats", h.FeedbackStats).Methods("GET")
	admin.HandleFunc("/feedback/{id}", h.GetFeedback).Methods("GET")
	admin.HandleFunc("/feedback/{id}", h.UpdateFeedback).Methods("PUT")
	admin.HandleFunc("/feedback/{id}", h.DeleteFeedback).Methods("DELETE")
}

// Handler returns the HTTP handler for the API server. CORS sits outside the
// router so preflight requests are answered before route matching.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.CORS(s.origins, s.dev)(h)
	h = middleware.Recovery(h)
	h = middleware.Logger(h)
	h = middleware.RequestID(s.log)(h)
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusNotFound, middleware.Failure{Message: "Route not found"})
}
