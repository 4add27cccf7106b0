package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
)

const maxJSONBodyBytes = 1 << 20

type TransactionHandler struct {
	transactionService services.TransactionService
	settingsService    *services.SettingsService
}

func NewTransactionHandler(service services.TransactionService, settings *services.SettingsService) *TransactionHandler {
	return &TransactionHandler{transactionService: service, settingsService: settings}
}

type transactionListResponse struct {
	Transactions []models.CostedTransaction `json:"transactions"`
	Categories   []string                   `json:"categories"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type bulkCategoryRequest struct {
	IDs      []string `json:"ids"`
	Category string   `json:"category"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.SendJSONError(w, "Invalid JSON request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	txs, err := h.transactionService.List(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "list transactions")
		return
	}
	settings, err := h.settingsService.Get(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "list transactions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, transactionListResponse{
		Transactions: txs,
		Categories:   settings.AccountTable.CategoryNames(),
	})
}

func (h *TransactionHandler) HandleRecategorize(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	tx, err := h.transactionService.Recategorize(r.Context(), key, chi.URLParam(r, "id"), req.Category)
	if err != nil {
		writeServiceError(w, r, err, "recategorize transaction")
		return
	}
	utils.WriteJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) HandleBulkRecategorize(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var req bulkCategoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		utils.SendJSONError(w, "ids must not be empty", http.StatusBadRequest)
		return
	}
	n, err := h.transactionService.BulkRecategorize(r.Context(), key, req.IDs, req.Category)
	if err != nil {
		writeServiceError(w, r, err, "bulk recategorize")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	if err := h.transactionService.Delete(r.Context(), key, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleNewTask discards every transaction of the session.
func (h *TransactionHandler) HandleNewTask(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	h.transactionService.NewTask(r.Context(), key)
	w.WriteHeader(http.StatusNoContent)
}
