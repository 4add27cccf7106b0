package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/processors"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
)

type ReportHandler struct {
	reportService services.ReportService
	now           func() time.Time
}

func NewReportHandler(service services.ReportService, now func() time.Time) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{reportService: service, now: now}
}

func (h *ReportHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	summary, err := h.reportService.Summary(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "summary")
		return
	}
	utils.WriteJSONWithETag(w, r, summary)
}

func (h *ReportHandler) HandleGetGSTReturn(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	ret, err := h.reportService.GSTReturn(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "gst return")
		return
	}
	utils.WriteJSON(w, http.StatusOK, ret)
}

func (h *ReportHandler) HandleGetJournal(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	j, err := h.reportService.Journal(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "journal")
		return
	}
	utils.WriteJSON(w, http.StatusOK, j)
}

func (h *ReportHandler) HandleExportReport(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	rows, err := h.reportService.TransactionReport(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "export report")
		return
	}
	var buf bytes.Buffer
	if err := processors.WriteTransactionReport(&buf, rows); err != nil {
		writeServiceError(w, r, err, "export report")
		return
	}
	name := processors.ReportFileName(h.reportService.ClientName(r.Context(), key), h.now())
	writeCSV(w, r, name, buf.Bytes())
}

func (h *ReportHandler) HandleExportJournal(w http.ResponseWriter, r *http.Request) {
	key, ok := sessionKeyOrFail(w, r)
	if !ok {
		return
	}
	rows, err := h.reportService.JournalRows(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, err, "export journal")
		return
	}
	var buf bytes.Buffer
	if err := processors.WriteJournal(&buf, rows); err != nil {
		writeServiceError(w, r, err, "export journal")
		return
	}
	name := processors.JournalFileName(h.reportService.ClientName(r.Context(), key), h.now())
	writeCSV(w, r, name, buf.Bytes())
}

func writeCSV(w http.ResponseWriter, r *http.Request, fileName string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.FromContext(r.Context()).Error("Failed to write CSV export", "file", fileName, "error", err)
	}
}
