// Package http holds the HTTP adapters over the core services.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/report"
	"dailyspend/internal/domain/transaction"
	"dailyspend/internal/domain/user"
	"dailyspend/internal/shared/middleware"
)

// TodayHandler serves the daily summary endpoints.
type TodayHandler struct {
	users      user.Repository
	reports    *report.Service
	selections account.SelectionRepository
	snapshots  account.SnapshotRepository
	now        func() time.Time
}

func NewTodayHandler(users user.Repository, reports *report.Service, selections account.SelectionRepository, snapshots account.SnapshotRepository) *TodayHandler {
	return &TodayHandler{
		users:      users,
		reports:    reports,
		selections: selections,
		snapshots:  snapshots,
		now:        time.Now,
	}
}

// TodayResponse is the daily summary payload.
type TodayResponse struct {
	DateKey         string     `json:"dateKey"`
	Total           float64    `json:"total"`
	Count           int        `json:"count"`
	MarkedPaidAt    *time.Time `json:"markedPaidAt"`
	GoalLabel       *string    `json:"goalLabel,omitempty"`
	CoverageBalance *float64   `json:"coverageBalance,omitempty"`
}

type TransactionResponse struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"accountId"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Pending     bool    `json:"pending"`
}

// HandleToday returns the recomputed summary for the caller's current local
// day.
func (h *TodayHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}
	dateKey := report.DateKeyAt(h.now(), report.Location(u))

	rep, err := h.reports.ComputeReport(r.Context(), userID, dateKey)
	if err != nil {
		log.Printf("Error computing report for user %d: %v", userID, err)
		http.Error(w, "Failed to compute report", http.StatusInternalServerError)
		return
	}

	resp := TodayResponse{
		DateKey:      rep.DateKey,
		Total:        rep.Total,
		Count:        rep.Count,
		MarkedPaidAt: rep.MarkedPaidAt,
		GoalLabel:    u.GoalLabel,
	}

	// Coverage balance is decoration; its absence never fails the summary.
	if sel, err := h.selections.GetByUserID(r.Context(), userID); err == nil && sel.CoverageAccountID != nil {
		if snap, err := h.snapshots.Latest(r.Context(), userID, *sel.CoverageAccountID); err == nil && snap != nil {
			if snap.Available != nil {
				resp.CoverageBalance = snap.Available
			} else {
				resp.CoverageBalance = snap.Current
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleTodayTransactions lists the transactions behind today's total.
func (h *TodayHandler) HandleTodayTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}
	dateKey := report.DateKeyAt(h.now(), report.Location(u))

	txs, err := h.reports.DayTransactions(r.Context(), userID, dateKey)
	if err != nil {
		log.Printf("Error listing today's transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

type markPaidRequest struct {
	DateKey string `json:"dateKey"`
}

// HandleMarkPaid recomputes today's totals and stamps the day paid.
func (h *TodayHandler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req markPaidRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	rep, err := h.reports.MarkPaid(r.Context(), userID, req.DateKey)
	if err != nil {
		if errors.Is(err, account.ErrNoAccountSelected) {
			http.Error(w, "No spend account selected", http.StatusBadRequest)
			return
		}
		log.Printf("Error marking paid for user %d: %v", userID, err)
		http.Error(w, "Failed to mark paid", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, TodayResponse{
		DateKey:      rep.DateKey,
		Total:        rep.Total,
		Count:        rep.Count,
		MarkedPaidAt: rep.MarkedPaidAt,
	})
}

func toTransactionResponses(txs []transaction.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionResponse{
			ID:          tx.ID,
			AccountID:   tx.AccountID,
			Date:        tx.Date.UTC().Format(time.RFC3339),
			Description: tx.Description,
			Amount:      tx.Amount,
			Pending:     tx.Pending,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
