package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/repository"
	"voltshare/backend/services/booking-service/internal/service"
)

const livePushInterval = time.Second

// LiveHandler streams the booking view over a websocket once per second so
// the client timer follows the server clock without polling.
type LiveHandler struct {
	svc      *service.BookingService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewLiveHandler builds handler.
func NewLiveHandler(svc *service.BookingService, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleLive handles GET /bookings/{id}/live.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Resolve before upgrading so unknown ids still get a plain 404.
	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to fetch booking")
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Int64("booking_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePushInterval)
	defer ticker.Stop()

	for {
		view, err := h.svc.Get(r.Context(), id)
		if err != nil {
			h.logger.Warn("live view fetch failed", zap.Int64("booking_id", id), zap.Error(err))
			return
		}
		if err := conn.WriteJSON(view); err != nil {
			return
		}
		if view.Status.Terminal() {
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
