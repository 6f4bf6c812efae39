package main

import (
	"net/http"

	httphandlers "dailyspend/internal/interfaces/http"
	"dailyspend/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with
// middleware applied.
func SetupRoutes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Provider webhooks authenticate with a body signature, not a user.
	mux.HandleFunc("/api/webhooks/provider", deps.WebhookHandler.HandleProviderWebhook)

	// Admin surface, expected to sit behind network-level access control.
	mux.HandleFunc("/api/admin/sync", deps.AdminHandler.HandleSync)
	mux.HandleFunc("/api/admin/items", deps.AdminHandler.HandleLinkItem)

	// User-scoped routes
	identity := middleware.Identity

	mux.Handle("/api/today", identity(http.HandlerFunc(deps.TodayHandler.HandleToday)))
	mux.Handle("/api/today/transactions", identity(http.HandlerFunc(deps.TodayHandler.HandleTodayTransactions)))
	mux.Handle("/api/today/mark-paid", identity(http.HandlerFunc(deps.TodayHandler.HandleMarkPaid)))
	mux.Handle("/api/devices/register", identity(http.HandlerFunc(deps.DeviceHandler.HandleRegister)))
	mux.Handle("/api/users/settings", identity(http.HandlerFunc(deps.UserHandler.HandleSettings)))
	mux.Handle("/api/users/selection", identity(http.HandlerFunc(deps.UserHandler.HandleSelection)))

	// Apply global middleware
	return middleware.RequestID(middleware.Logging(middleware.Telemetry(middleware.Tracing(mux))))
}
