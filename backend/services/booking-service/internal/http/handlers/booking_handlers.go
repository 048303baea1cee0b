package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/repository"
	"voltshare/backend/services/booking-service/internal/service"
)

// BookingHandler holds the booking lifecycle endpoints.
type BookingHandler struct {
	svc    *service.BookingService
	logger *zap.Logger
}

// NewBookingHandler builds handler set.
func NewBookingHandler(svc *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		svc:    svc,
		logger: logger,
	}
}

type createBookingRequest struct {
	ChargerID int64  `json:"charger_id"`
	UserName  string `json:"user_name"`
	Duration  int    `json:"duration"`
}

type completeRequest struct {
	ChargerID       int64   `json:"charger_id"`
	TotalEnergy     float64 `json:"total_energy"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// HandleCreate handles POST /bookings.
func (h *BookingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ChargerID == 0 {
		writeError(w, http.StatusBadRequest, "charger_id is required")
		return
	}

	booking, err := h.svc.Book(r.Context(), req.ChargerID, req.UserName, req.Duration)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, booking)
	case errors.Is(err, service.ErrMissingUserName), errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrChargerUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrChargerNotFound):
		writeError(w, http.StatusNotFound, "charger not found")
	default:
		h.logger.Error("booking failed", zap.Int64("charger_id", req.ChargerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "booking failed")
	}
}

// HandleStart handles POST /bookings/{id}/start.
func (h *BookingHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	late, err := h.svc.Start(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":      "charging started",
			"status":       "CHARGING",
			"late_minutes": late,
		})
	case errors.Is(err, repository.ErrBookingNotFound):
		writeError(w, http.StatusBadRequest, "booking not found")
	case errors.Is(err, service.ErrAlreadyCharging):
		writeError(w, http.StatusConflict, "booking is already charging")
	case errors.Is(err, service.ErrControllerUnreachable):
		writeError(w, http.StatusInternalServerError, "failed to unblock hardware via cms")
	default:
		h.logger.Error("start failed", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start charging")
	}
}

// HandleGet handles GET /bookings/{id}.
func (h *BookingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case errors.Is(err, repository.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	default:
		h.logger.Error("get booking failed", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch booking")
	}
}

// HandleExtend handles POST /bookings/{id}/extend?extraMinutes=N.
func (h *BookingHandler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	extra, err := strconv.Atoi(r.URL.Query().Get("extraMinutes"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "extraMinutes is required")
		return
	}

	newDuration, err := h.svc.Extend(r.Context(), id, extra)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":      "session extended",
			"new_duration": newDuration,
			"status":       "CHARGING",
		})
	case errors.Is(err, repository.ErrBookingNotFound):
		writeError(w, http.StatusBadRequest, "booking not found")
	case errors.Is(err, service.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("extend failed", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to extend booking")
	}
}

// HandleStop handles POST /bookings/{id}/stop?cancelledBy=.
func (h *BookingHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cancelledBy := r.URL.Query().Get("cancelledBy")

	err := h.svc.Stop(r.Context(), id, cancelledBy)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message":      "stop signal sent",
			"cancelled_by": cancelledBy,
		})
	case errors.Is(err, repository.ErrBookingNotFound):
		writeError(w, http.StatusBadRequest, "booking not found")
	case errors.Is(err, service.ErrControllerUnreachable):
		writeError(w, http.StatusInternalServerError, "cms communication error")
	default:
		h.logger.Error("stop failed", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to stop booking")
	}
}

// HandleComplete handles POST /bookings/complete, the completion push from
// the charger management system.
func (h *BookingHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ChargerID == 0 {
		writeError(w, http.StatusBadRequest, "charger_id is required")
		return
	}

	err := h.svc.Complete(r.Context(), req.ChargerID, req.TotalEnergy, req.DurationSeconds)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "sync successful"})
	case errors.Is(err, service.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, "no active session")
	default:
		h.logger.Error("complete failed", zap.Int64("charger_id", req.ChargerID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to sync session")
	}
}
