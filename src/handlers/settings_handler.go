package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/gstfolio/src/models"
	"github.com/username/gstfolio/src/parsers"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
)

const defaultHistoryLimit = 50

type SettingsHandler struct {
	settingsService *services.SettingsService
	defaultBank     string
}

func NewSettingsHandler(service *services.SettingsService, defaultBank string) *SettingsHandler {
	return &SettingsHandler{settingsService: service, defaultBank: defaultBank}
}

type addCategoryRequest struct {
	Name  string           `json:"name"`
	Code  string           `json:"code"`
	Ratio *decimal.Decimal `json:"ratio"`
}

type createClientRequest struct {
	CompanyName string `json:"companyName"`
	IRDNumber   string `json:"irdNumber"`
}

func (h *SettingsHandler) HandleGetBanks(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"banks":   parsers.BankNames(),
		"formats": parsers.BankFormats(),
		"default": h.defaultBank,
	})
}

func (h *SettingsHandler) HandleGetAccounts(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	settings, err := h.settingsService.Get(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "get accounts")
		return
	}
	utils.WriteJSONWithETag(w, r, settings.AccountTable.Sorted())
}

func (h *SettingsHandler) HandleReplaceAccounts(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var table models.AccountTable
	if !decodeJSONBody(w, r, &table) {
		return
	}
	saved, err := h.settingsService.ReplaceAccountTable(r.Context(), key, table)
	if err != nil {
		writeServiceError(w, r, err, "replace accounts")
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved.Sorted())
}

func (h *SettingsHandler) HandleAddAccount(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var req addCategoryRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	c, err := h.settingsService.AddCategory(r.Context(), key, req.Name, req.Code, req.Ratio)
	if err != nil {
		writeServiceError(w, r, err, "add account")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

func (h *SettingsHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var c models.AccountCategory
	if !decodeJSONBody(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	table, err := h.settingsService.UpdateCategory(r.Context(), key, c)
	if err != nil {
		writeServiceError(w, r, err, "update account")
		return
	}
	utils.WriteJSON(w, http.StatusOK, table.Sorted())
}

func (h *SettingsHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	table, err := h.settingsService.DeleteCategory(r.Context(), key, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "delete account")
		return
	}
	utils.WriteJSON(w, http.StatusOK, table.Sorted())
}

func (h *SettingsHandler) HandleResetAccounts(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	table, err := h.settingsService.ResetAccountTable(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "reset accounts")
		return
	}
	utils.WriteJSON(w, http.StatusOK, table.Sorted())
}

func (h *SettingsHandler) HandleGetMapping(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	settings, err := h.settingsService.Get(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "get mapping")
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings.Mapping)
}

func (h *SettingsHandler) HandleGetUploadHistory(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.SendJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	history, err := h.settingsService.UploadHistory(r.Context(), key, limit)
	if err != nil {
		writeServiceError(w, r, err, "upload history")
		return
	}
	if history == nil {
		history = []models.UploadRecord{}
	}
	utils.WriteJSON(w, http.StatusOK, history)
}

func (h *SettingsHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	clients, err := h.settingsService.ListClients(r.Context(), key.AccountID)
	if err != nil {
		writeServiceError(w, r, err, "list clients")
		return
	}
	if clients == nil {
		clients = []models.ManagedClient{}
	}
	utils.WriteJSON(w, http.StatusOK, clients)
}

func (h *SettingsHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	var req createClientRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.CompanyName == "" {
		utils.SendJSONError(w, "companyName is required", http.StatusBadRequest)
		return
	}
	c, err := h.settingsService.CreateClient(r.Context(), key.AccountID, req.CompanyName, req.IRDNumber)
	if err != nil {
		writeServiceError(w, r, err, "create client")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}
