package api

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"yieldvault/models"
	"yieldvault/service"
)

// processorResponse is the shape returned by the cron trigger endpoints
type processorResponse struct {
	Success         bool     `json:"success"`
	ProcessedCount  int      `json:"processed_count"`
	TotalReturned   string   `json:"total_returned,omitempty"`
	TotalUpdated    string   `json:"total_updated,omitempty"`
	Errors          []string `json:"errors"`
	ExecutionTimeMS int64    `json:"execution_time_ms"`
	Timestamp       string   `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func summaryResponse(summary *service.ProcessorSummary) processorResponse {
	resp := processorResponse{
		Success:         summary.Failed == 0,
		ProcessedCount:  summary.Processed,
		Errors:          summary.Errors,
		ExecutionTimeMS: summary.Duration.Milliseconds(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}

	// Accrual updates profit in place, the other processors return funds.
	if summary.Kind == models.RunKindAccrual {
		resp.TotalUpdated = summary.TotalAmount.String()
	} else {
		resp.TotalReturned = summary.TotalAmount.String()
	}

	return resp
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAccruals(w http.ResponseWriter, r *http.Request) {
	summary, err := s.accrual.Run(r.Context())
	if err != nil {
		log.WithError(err).Error("Accrual run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(summary))
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	summary, err := s.settlement.Run(r.Context())
	if err != nil {
		log.WithError(err).Error("Settlement run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(summary))
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reconciler.Run(r.Context())
	if err != nil {
		log.WithError(err).Error("Reconcile run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(summary))
}

func (s *Server) handleUpdateRateTiers(w http.ResponseWriter, r *http.Request) {
	var table models.RateTable
	if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.settings.UpdateRateTable(r.Context(), table); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tiers":   len(table),
	})
}

func (s *Server) handleUpdateVipThresholds(w http.ResponseWriter, r *http.Request) {
	var thresholds models.VipThresholds
	if err := json.NewDecoder(r.Body).Decode(&thresholds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	changed, err := s.settings.UpdateVipThresholds(r.Context(), thresholds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"users_changed": changed,
	})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	kind := models.RunKind(r.URL.Query().Get("kind"))
	switch kind {
	case models.RunKindAccrual, models.RunKindSettlement, models.RunKindReconcile:
	default:
		writeError(w, http.StatusBadRequest, "kind must be one of accrual, settlement, reconcile")
		return
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer uow.Rollback()

	run, err := uow.ProcessorRunRepository().GetLatest(r.Context(), kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"kind":              run.Kind,
		"processed":         run.Processed,
		"failed":            run.Failed,
		"total_amount":      run.TotalAmount.String(),
		"errors":            run.ErrorList,
		"execution_time_ms": run.ExecutionTimeMS,
		"created_at":        run.CreatedAt.UTC().Format(time.RFC3339),
	})
}
