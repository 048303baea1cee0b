package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/models"
	"voltshare/backend/services/booking-service/internal/repository"
	"voltshare/backend/services/booking-service/internal/service"
)

// ChargerHandler holds the charger registry endpoints plus the state-push
// endpoints the CMS calls back into.
type ChargerHandler struct {
	chargers *service.ChargerService
	bookings *service.BookingService
	logger   *zap.Logger
}

// NewChargerHandler builds handler set.
func NewChargerHandler(chargers *service.ChargerService, bookings *service.BookingService, logger *zap.Logger) *ChargerHandler {
	return &ChargerHandler{
		chargers: chargers,
		bookings: bookings,
		logger:   logger,
	}
}

type bookChargerRequest struct {
	UserName string `json:"user_name"`
	Duration int    `json:"duration"`
}

// HandleCreate handles POST /chargers.
func (h *ChargerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var charger models.Charger
	if err := json.NewDecoder(r.Body).Decode(&charger); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.chargers.Create(r.Context(), &charger); err != nil {
		h.logger.Error("create charger failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create charger")
		return
	}
	writeJSON(w, http.StatusOK, charger)
}

// HandleList handles GET /chargers.
func (h *ChargerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	chargers, err := h.chargers.GetAll(r.Context())
	if err != nil {
		h.logger.Error("list chargers failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch chargers")
		return
	}
	writeJSON(w, http.StatusOK, chargers)
}

// HandleGet handles GET /chargers/{id}.
func (h *ChargerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	charger, err := h.chargers.GetByID(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, charger)
	case errors.Is(err, repository.ErrChargerNotFound):
		writeError(w, http.StatusNotFound, "charger not found")
	default:
		h.logger.Error("get charger failed", zap.Int64("charger_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch charger")
	}
}

// HandleByHost handles GET /chargers/host/{host}.
func (h *ChargerHandler) HandleByHost(w http.ResponseWriter, r *http.Request) {
	host := r.PathValue("host")
	if host == "" {
		writeError(w, http.StatusBadRequest, "host is required")
		return
	}

	chargers, err := h.chargers.GetByHost(r.Context(), host)
	if err != nil {
		h.logger.Error("get chargers by host failed", zap.String("host", host), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch chargers")
		return
	}
	writeJSON(w, http.StatusOK, chargers)
}

// HandleBook handles POST /chargers/{id}/book, the combined block-and-book
// flow.
func (h *ChargerHandler) HandleBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req bookChargerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserName == "" || req.Duration == 0 {
		writeError(w, http.StatusBadRequest, "user_name and duration are required")
		return
	}

	booking, err := h.bookings.Book(r.Context(), id, req.UserName, req.Duration)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, booking)
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrChargerUnavailable),
		errors.Is(err, service.ErrControllerUnreachable),
		errors.Is(err, repository.ErrChargerNotFound):
		writeError(w, http.StatusBadRequest, "booking failed: charger unavailable or cms unreachable")
	default:
		h.logger.Error("book charger failed", zap.Int64("charger_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "booking failed")
	}
}

// HandleManualBlock handles POST /chargers/{id}/block.
func (h *ChargerHandler) HandleManualBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	charger, err := h.chargers.ManualBlock(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, charger)
	case errors.Is(err, service.ErrChargerUnavailable),
		errors.Is(err, service.ErrControllerUnreachable),
		errors.Is(err, repository.ErrChargerNotFound):
		writeError(w, http.StatusBadRequest, "charger block failed: not available or cms unreachable")
	default:
		h.logger.Error("manual block failed", zap.Int64("charger_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to block charger")
	}
}

// HandleConfirmUnblock handles PUT /chargers/{id}/unblock, the CMS push that
// resets the charger for the next guest.
func (h *ChargerHandler) HandleConfirmUnblock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.chargers.MarkAvailable(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "charger is now available"})
	case errors.Is(err, repository.ErrChargerNotFound):
		writeError(w, http.StatusNotFound, "charger not found")
	default:
		h.logger.Error("confirm unblock failed", zap.Int64("charger_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to unblock charger")
	}
}

// HandleConfirmBlock handles PUT /chargers/{id}/block. The booking authority
// initiates blocks itself, so this only acknowledges the CMS action.
func (h *ChargerHandler) HandleConfirmBlock(w http.ResponseWriter, r *http.Request) {
	if _, ok := pathID(w, r, "id"); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "block acknowledged"})
}
