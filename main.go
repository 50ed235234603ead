package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/pennywise/backend/src/config"
	"github.com/username/pennywise/backend/src/database"
	"github.com/username/pennywise/backend/src/handlers"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/model"
	"github.com/username/pennywise/backend/src/processors"
	"github.com/username/pennywise/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Requested-With, X-User-ID, X-Request-ID")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Pennywise backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath, config.Cfg.MigrationsDir)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	sessionCache := cache.New(config.Cfg.ImportSessionTTL, 2*config.Cfg.ImportSessionTTL)

	transactionStore := model.NewTransactionStore(database.DB)
	categoryStore := model.NewCategoryStore(database.DB)
	userStore := model.NewUserStore(database.DB)
	budgetStore := model.NewBudgetStore(database.DB)
	savingStore := model.NewSavingStore(database.DB)

	currencyService := services.NewCurrencyService(config.Cfg.RateAPIURL, config.Cfg.RateCacheTTL)
	reportService := services.NewReportService(
		transactionStore, budgetStore, savingStore, userStore, currencyService, reportCache)
	anomalyService := services.NewAnomalyService(transactionStore, transactionStore)
	budgetWatcher := services.NewBudgetWatcher(
		budgetStore, transactionStore, currencyService, config.Cfg.BaseCurrency)

	statementProcessor := processors.NewStatementProcessor()
	classifier := processors.NewCategoryClassifier()
	duplicateDetector := processors.NewDuplicateDetector(transactionStore)

	importService := services.NewImportService(
		statementProcessor,
		classifier,
		duplicateDetector,
		transactionStore,
		categoryStore,
		userStore,
		sessionCache,
		config.Cfg.ImportSessionTTL,
		reportService.InvalidateUserCache,
	)

	importHandler := handlers.NewImportHandler(importService)
	transactionHandler := handlers.NewTransactionHandler(
		transactionStore, userStore, currencyService, budgetWatcher, reportService)
	categoryHandler := handlers.NewCategoryHandler(categoryStore)
	budgetHandler := handlers.NewBudgetHandler(budgetStore, categoryStore, reportService)
	savingsHandler := handlers.NewSavingsHandler(
		savingStore, transactionStore, currencyService, config.Cfg.BaseCurrency, reportService)
	reportHandler := handlers.NewReportHandler(reportService)
	anomalyHandler := handlers.NewAnomalyHandler(anomalyService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)
	userHandler := handlers.NewUserHandler(userStore, reportService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Pennywise Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireUser)

			r.Post("/import", importHandler.HandleUpload)
			r.Post("/import/confirm", importHandler.HandleConfirm)

			r.Get("/transactions", transactionHandler.HandleList)
			r.Post("/transactions", transactionHandler.HandleCreate)
			r.Put("/transactions/{id}", transactionHandler.HandleUpdate)
			r.Delete("/transactions/{id}", transactionHandler.HandleDelete)

			r.Get("/categories", categoryHandler.HandleList)
			r.Post("/categories", categoryHandler.HandleCreate)

			r.Get("/budgets", budgetHandler.HandleList)
			r.Post("/budgets", budgetHandler.HandleUpsert)
			r.Delete("/budgets/{id}", budgetHandler.HandleDelete)

			r.Get("/savings", savingsHandler.HandleList)
			r.Post("/savings", savingsHandler.HandleCreate)
			r.Put("/savings/{id}", savingsHandler.HandleUpdate)
			r.Post("/savings/{id}/primary", savingsHandler.HandleSetPrimary)
			r.Delete("/savings/{id}", savingsHandler.HandleDelete)
			r.Post("/savings/plans", savingsHandler.HandleCreatePlan)
			r.Post("/savings/plans/{id}/toggle", savingsHandler.HandleTogglePlan)
			r.Delete("/savings/plans/{id}", savingsHandler.HandleDeletePlan)

			r.Get("/dashboard", reportHandler.HandleDashboard)
			r.Get("/reports", reportHandler.HandleYearlyReport)

			r.Get("/anomalies", anomalyHandler.HandleList)
			r.Post("/anomalies/{id}/dismiss", anomalyHandler.HandleDismiss)

			r.Get("/currency/rates", currencyHandler.HandleRates)
			r.Get("/currency/convert", currencyHandler.HandleConvert)

			r.Get("/user/profile", userHandler.HandleGetProfile)
			r.Put("/user/profile", userHandler.HandleUpdateProfile)
			r.Post("/user/currency", userHandler.HandleUpdateCurrency)
		})
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
