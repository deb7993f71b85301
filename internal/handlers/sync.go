package handlers

import (
	"context"
	"errors"
	"net/http"

	"linesdesk/ingestion/internal/ingest"
)

// SyncResponse is the reply of the admin sync endpoint
type SyncResponse struct {
	Success bool                   `json:"success"`
	RunID   string                 `json:"runId,omitempty"`
	Summary []ingest.LeagueSummary `json:"summary,omitempty"`
	Prune   *ingest.PruneReport    `json:"prune,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// TriggerSync runs a full multi-league sync and reports the per-league summary
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	// A client disconnect must not abort a sync midway through a league
	ctx := context.WithoutCancel(r.Context())

	report, err := h.syncer.Run(ctx)
	if errors.Is(err, ingest.ErrSyncInProgress) {
		respondJSON(w, http.StatusConflict, SyncResponse{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, SyncResponse{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, SyncResponse{
		Success: report.Success,
		RunID:   report.RunID,
		Summary: report.Summary,
		Prune:   report.Prune,
	})
}
