// Fuel station back-office API.
// JWT authentication, Firestore-backed ledger, dip-chart reconciliation
// and grouped sales reporting.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"fuelstation/audit"
	"fuelstation/auth"
	"fuelstation/config"
	"fuelstation/db"
	"fuelstation/dipchart"
	"fuelstation/handlers"
	"fuelstation/ledger"
	"fuelstation/middleware"
	"fuelstation/models"
)

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		log.SetLevel(level)
	}
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	log := newLogger(cfg.Logging)
	log.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	}).Info("starting fuel station API server")

	ctx := context.Background()
	store, err := db.New(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath, log)
	if err != nil {
		log.Fatalf("failed to initialize Firestore: %v", err)
	}
	defer store.Close()

	calibration, err := dipchart.LoadFile(cfg.DipChart.Path)
	if err != nil {
		log.Fatalf("failed to load dip chart %s: %v", cfg.DipChart.Path, err)
	}
	log.WithFields(logrus.Fields{
		"points":    calibration.Points(),
		"max_depth": calibration.MaxDepth(),
		"max_ltr":   calibration.MaxVolume(),
	}).Info("dip chart calibration loaded")

	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshTokenExpiration,
	)

	recorder := audit.NewRecorder(store, log)
	workflow := ledger.NewWorkflow(store, log)

	authHandler := handlers.NewAuthHandler(store, jwtManager, recorder, log)
	readingHandler := handlers.NewReadingHandler(store, workflow, recorder, log)
	stockHandler := handlers.NewStockHandler(store, workflow, calibration, recorder, log)
	stationHandler := handlers.NewStationHandler(store, recorder, log)
	ledgerDocsHandler := handlers.NewLedgerDocsHandler(store, recorder, log)
	reportHandler := handlers.NewReportHandler(store, recorder, log)
	managerHandler := handlers.NewManagerHandler(store, recorder, log)
	adminHandler := handlers.NewAdminHandler(store, recorder, log)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/api/login", authHandler.Login)
	mux.HandleFunc("/api/refresh", authHandler.RefreshToken)

	authMiddleware := middleware.AuthMiddleware(jwtManager, store)

	anyStaff := middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleAttendant)
	managerUp := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	protect := func(role func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
		return authMiddleware(role(h))
	}

	// Pump readings (all staff)
	mux.Handle("/api/readings/submit", protect(anyStaff, readingHandler.Submit))
	mux.Handle("/api/readings", protect(anyStaff, readingHandler.List))
	mux.Handle("/api/readings/export", protect(managerUp, readingHandler.ExportCSV))

	// Dips and tank stock
	mux.Handle("/api/dips/record", protect(anyStaff, stockHandler.RecordDip))
	mux.Handle("/api/dips", protect(anyStaff, stockHandler.ListDips))
	mux.Handle("/api/tanks/delivery", protect(managerUp, stockHandler.RecordDelivery))
	mux.Handle("/api/tanks/alerts", protect(managerUp, managerHandler.LowStockTanks))

	// Master data (admin only)
	mux.Handle("/api/products", protect(anyStaff, stationHandler.ListProducts))
	mux.Handle("/api/products/create", protect(adminOnly, stationHandler.CreateProduct))
	mux.Handle("/api/products/update", protect(adminOnly, stationHandler.UpdateProduct))
	mux.Handle("/api/products/delete", protect(adminOnly, stationHandler.DeleteProduct))
	mux.Handle("/api/tanks", protect(anyStaff, stationHandler.ListTanks))
	mux.Handle("/api/tanks/create", protect(adminOnly, stationHandler.CreateTank))
	mux.Handle("/api/tanks/update", protect(adminOnly, stationHandler.UpdateTank))
	mux.Handle("/api/tanks/delete", protect(adminOnly, stationHandler.DeleteTank))
	mux.Handle("/api/dispensers", protect(anyStaff, stationHandler.ListDispensers))
	mux.Handle("/api/dispensers/create", protect(adminOnly, stationHandler.CreateDispenser))
	mux.Handle("/api/dispensers/update", protect(adminOnly, stationHandler.UpdateDispenser))
	mux.Handle("/api/dispensers/delete", protect(adminOnly, stationHandler.DeleteDispenser))
	mux.Handle("/api/nozzles", protect(anyStaff, stationHandler.ListNozzles))
	mux.Handle("/api/nozzles/create", protect(adminOnly, stationHandler.CreateNozzle))
	mux.Handle("/api/nozzles/update", protect(adminOnly, stationHandler.UpdateNozzle))
	mux.Handle("/api/nozzles/delete", protect(adminOnly, stationHandler.DeleteNozzle))

	// Bookkeeping documents (manager and up)
	mux.Handle("/api/invoices", protect(managerUp, ledgerDocsHandler.ListInvoices))
	mux.Handle("/api/invoices/create", protect(managerUp, ledgerDocsHandler.CreateInvoice))
	mux.Handle("/api/invoices/delete", protect(managerUp, ledgerDocsHandler.DeleteInvoice))
	mux.Handle("/api/vouchers", protect(managerUp, ledgerDocsHandler.ListVouchers))
	mux.Handle("/api/vouchers/create", protect(managerUp, ledgerDocsHandler.CreateVoucher))
	mux.Handle("/api/vouchers/delete", protect(managerUp, ledgerDocsHandler.DeleteVoucher))
	mux.Handle("/api/accounts", protect(managerUp, ledgerDocsHandler.ListAccounts))
	mux.Handle("/api/accounts/create", protect(managerUp, ledgerDocsHandler.CreateAccount))
	mux.Handle("/api/accounts/update", protect(managerUp, ledgerDocsHandler.UpdateAccount))
	mux.Handle("/api/accounts/delete", protect(managerUp, ledgerDocsHandler.DeleteAccount))

	// Reports (manager and up)
	mux.Handle("/api/reports/sales", protect(managerUp, reportHandler.Sales))
	mux.Handle("/api/reports/daily", protect(managerUp, reportHandler.Daily))
	mux.Handle("/api/reports/reconciliation", protect(managerUp, reportHandler.Reconciliation))
	mux.Handle("/api/reports/export", protect(managerUp, reportHandler.ExportExcel))

	// Administration
	mux.Handle("/api/manager/reset-password", protect(managerUp, managerHandler.ResetPassword))
	mux.Handle("/api/admin/users", protect(adminOnly, adminHandler.GetUsers))
	mux.Handle("/api/admin/users/create", protect(adminOnly, adminHandler.CreateUser))
	mux.Handle("/api/admin/users/update", protect(adminOnly, adminHandler.UpdateUser))
	mux.Handle("/api/admin/users/delete", protect(adminOnly, adminHandler.DeleteUser))
	mux.Handle("/api/admin/settings", protect(adminOnly, adminHandler.GetSettings))
	mux.Handle("/api/admin/settings/save", protect(adminOnly, adminHandler.SaveSettings))

	handler := middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(mux)
	handler = rateLimiter.Middleware()(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d}`, time.Now().Unix())
}
