package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"voltshare/backend/services/cms-service/internal/service"
)

// ControlHandler exposes the hardware control surface. Commands always answer
// 200 with a status/message result; failures are part of the payload, not the
// transport.
type ControlHandler struct {
	svc    *service.ControlService
	logger *zap.Logger
}

// NewControlHandler builds handler set.
func NewControlHandler(svc *service.ControlService, logger *zap.Logger) *ControlHandler {
	return &ControlHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleBlock handles POST /cms/chargers/{id}/block.
func (h *ControlHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := chargerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Block(r.Context(), id))
}

// HandleUnblock handles POST /cms/chargers/{id}/unblock.
func (h *ControlHandler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	id, ok := chargerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Unblock(r.Context(), id))
}

// HandleStop handles POST /cms/chargers/{id}/stop.
func (h *ControlHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	id, ok := chargerID(w, r)
	if !ok {
		return
	}
	h.logger.Info("stop request received", zap.Int64("charger_id", id))
	writeJSON(w, http.StatusOK, h.svc.Stop(r.Context(), id))
}

// NewHealthHandler returns GET /health handler.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func chargerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid charger id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
