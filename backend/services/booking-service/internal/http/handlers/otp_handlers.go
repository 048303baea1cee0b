package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"voltshare/backend/services/booking-service/internal/otp"
)

// OTPHandler exposes the one-time passcode gate.
type OTPHandler struct {
	svc    *otp.Service
	logger *zap.Logger
}

// NewOTPHandler builds handler set.
func NewOTPHandler(svc *otp.Service, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleGenerate handles POST /otp/{bookingId}/generate.
func (h *OTPHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "bookingId")
	if !ok {
		return
	}

	code, err := h.svc.Generate(r.Context(), bookingID)
	if err != nil {
		h.logger.Error("otp generate failed", zap.Int64("booking_id", bookingID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate otp")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"otp": code})
}

// HandleVerify handles POST /otp/{bookingId}/verify?otp=.
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := pathID(w, r, "bookingId")
	if !ok {
		return
	}

	verified, err := h.svc.Verify(r.Context(), bookingID, r.URL.Query().Get("otp"))
	if err != nil {
		h.logger.Error("otp verify failed", zap.Int64("booking_id", bookingID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to verify otp")
		return
	}
	if !verified {
		writeError(w, http.StatusBadRequest, "invalid otp")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "otp verified successfully"})
}
