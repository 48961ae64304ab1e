package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Agreement) AdminAgreements(w http.ResponseWriter, r *http.Request) {
	agreements, err := h.agreementService.AllAgreements(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "agreements": agreements})
}

func (h *Agreement) AdminClear(w http.ResponseWriter, r *http.Request) {
	out, err := h.agreementService.ClearAll(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse{RequestID: requestID(r), Outcome: out})
}

func (h *Agreement) AdminDelete(w http.ResponseWriter, r *http.Request) {
	out, err := h.agreementService.AdminDelete(r.Context(), h.caller(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse{RequestID: requestID(r), Outcome: out})
}

func (h *Agreement) AdminLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.agreementService.Logs(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "entries": entries})
}

func (h *Agreement) AdminClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.agreementService.ClearLogs(r.Context(), h.caller(r)); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Agreement) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.agreementService.Stats(r.Context(), h.caller(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID(r), "stats": stats})
}
