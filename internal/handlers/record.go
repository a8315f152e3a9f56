package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pomotrack/apiserver/internal/services"
)

// RecordHandler logs completed intervals and serves the weekly report.
type RecordHandler struct {
	recordService *services.RecordService
}

func NewRecordHandler(recordService *services.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// RecordRouter registers record routes behind requireSession.
func RecordRouter(r chi.Router, recordService *services.RecordService, requireSession func(http.Handler) http.Handler) {
	handler := NewRecordHandler(recordService)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Post("/recordAdd", handler.AddRecord)
		r.Get("/recordAdd", handler.AddRecord)
		r.Get("/report", handler.Report)
	})
}

func (h *RecordHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "record_add", err)
		return
	}

	record, err := h.recordService.Append(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "record_add", err)
		return
	}
	writeSuccess(w, http.StatusCreated, record)
}

func (h *RecordHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeServiceError(w, r, "report", err)
		return
	}

	report, err := h.recordService.WeeklyReport(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "report", err)
		return
	}
	writeSuccess(w, http.StatusOK, report)
}
