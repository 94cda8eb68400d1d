package api

import (
	"net/http"

	"walk-scheduler/internal/api/handlers"
	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/scheduling"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	optimizer *scheduling.Optimizer,
	slots *scheduling.SlotService,
	defaults domain.RunParams,
	log *logger.Logger,
) http.Handler {
	mux := http.NewServeMux()

	optHandler := &handlers.OptimizationHandler{
		Optimizer:     optimizer,
		DefaultParams: defaults,
	}
	slotHandler := &handlers.SlotHandler{
		Service:      slots,
		DiscountRate: defaults.GroupDiscountRate,
	}

	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/optimizations", optHandler.List)
	mux.HandleFunc("/optimizations/preview", optHandler.Preview)
	mux.HandleFunc("/optimizations/apply", optHandler.Apply)

	mux.HandleFunc("/slots/join", slotHandler.Join)
	mux.HandleFunc("/slots/leave", slotHandler.Leave)
	mux.HandleFunc("/slots/start", slotHandler.Start)
	mux.HandleFunc("/slots/complete", slotHandler.Complete)
	mux.HandleFunc("/slots/cancel", slotHandler.Cancel)

	return loggingMiddleware(log, mux)
}
